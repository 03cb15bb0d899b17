package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a
// use case. A failed persistence aborts the whole event; no notification
// may be emitted for state that never became durable.
var ErrPersistence = fmt.Errorf("chat use case persistence error")
