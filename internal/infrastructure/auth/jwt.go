package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-courier/internal/infrastructure/cache/port"
)

// ErrInvalidCredential is returned for any token that fails verification:
// bad signature, expired, malformed, or missing claims.
var ErrInvalidCredential = errors.New("auth: invalid credential")

// Identity is the result of verifying a credential.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier issues and verifies bearer tokens. An optional cache short-
// circuits repeated verification of the same token string.
type Verifier struct {
	secret   []byte
	ttl      time.Duration
	cache    port.Cache
	cacheTTL time.Duration
}

// NewVerifier constructs a Verifier signing with HS256.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// WithCache enables caching of verified tokens. Entries never outlive the
// token's own expiry.
func (v *Verifier) WithCache(c port.Cache, ttl time.Duration) *Verifier {
	v.cache = c
	v.cacheTTL = ttl
	return v
}

// Issue signs a token for the given user.
func (v *Verifier) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "go-courier",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify validates a credential and yields the identity it was issued to.
func (v *Verifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, ErrInvalidCredential
	}

	if id, ok := v.cached(ctx, credential); ok {
		return id, nil
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidCredential
	}

	id := &Identity{UserID: claims.UserID, Email: claims.Email}
	v.store(ctx, credential, id, claims.ExpiresAt)
	return id, nil
}

func cacheKey(credential string) string {
	sum := sha1.Sum([]byte(credential))
	return "auth:token:" + hex.EncodeToString(sum[:])
}

func (v *Verifier) cached(ctx context.Context, credential string) (*Identity, bool) {
	if v.cache == nil {
		return nil, false
	}
	raw, err := v.cache.Get(ctx, cacheKey(credential))
	if err != nil {
		return nil, false
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.UserID == "" {
		// Corrupt entry: drop it and fall back to full verification.
		_, _ = v.cache.Del(ctx, cacheKey(credential))
		return nil, false
	}
	return &id, true
}

func (v *Verifier) store(ctx context.Context, credential string, id *Identity, exp *jwt.NumericDate) {
	if v.cache == nil {
		return
	}
	ttl := v.cacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if exp != nil {
		if remaining := time.Until(exp.Time); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}
	body, err := json.Marshal(id)
	if err != nil {
		return
	}
	_ = v.cache.Set(ctx, cacheKey(credential), string(body), ttl)
}
