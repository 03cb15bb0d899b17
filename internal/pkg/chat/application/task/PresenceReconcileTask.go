package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	userport "go-courier/internal/repository/port"
)

// PresenceReconcileTaskType is the queue task name for sweeping stale
// presence flags. A crash can leave users marked online in the store with
// no live connection behind them; the live registry is authoritative, so
// the sweep realigns the durable projection with it.
const PresenceReconcileTaskType = "presence:reconcile"

// PresenceReconcilePayload is the JSON payload transported via the queue.
type PresenceReconcilePayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

// EnqueuePresenceReconcile schedules a sweep after the given delay. The
// delay gives clients a window to re-establish their connections after a
// restart before their flags are reset.
func EnqueuePresenceReconcile(ctx context.Context, client qport.Client, delay time.Duration) error {
	payload, err := json.Marshal(PresenceReconcilePayload{RequestedAt: time.Now()})
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: PresenceReconcileTaskType, Payload: payload}, qport.EnqueueOption{
		ProcessIn: delay,
		MaxRetry:  3,
		UniqueTTL: delay + time.Minute,
	})
	return err
}

// RegisterPresenceReconcileTask binds the sweep handler to the worker
// server. The handler is idempotent: a repeat run over already-clean
// flags changes nothing.
func RegisterPresenceReconcileTask(srv qport.Server, users userport.UserRepository, registry *realtime.Registry) {
	log := logrus.WithField("component", "presence_reconcile")

	srv.Register(PresenceReconcileTaskType, func(ctx context.Context, t qport.Task) error {
		var p PresenceReconcilePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload: retrying cannot help.
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		all, err := users.FindAll(ctx)
		if err != nil {
			return err
		}

		swept := 0
		for _, u := range all {
			if !u.IsOnline || registry.IsOnline(u.ID) {
				continue
			}
			if err := users.SetOnline(ctx, u.ID, false); err != nil {
				return err
			}
			if u.LastSeen == nil || u.LastSeen.Before(p.RequestedAt) {
				if err := users.SetLastSeen(ctx, u.ID, p.RequestedAt); err != nil {
					return err
				}
			}
			swept++
		}

		if swept > 0 {
			log.WithField("count", swept).Info("reset stale online flags")
		}
		return nil
	})
}
