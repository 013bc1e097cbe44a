package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/queue"
)

// Store is the KV repository holding OTP records.
type Store = kv.Store

// Enqueuer schedules the delivery task.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (uuid.UUID, error)
}

// CodeRequest is the input of RequestCode.
type CodeRequest struct {
	Email            string
	Username         string
	Purpose          string
	ExpiresInMinutes int
}

// VerifyResult reports a successful verification.
type VerifyResult struct {
	AlreadyValidated bool
}

// Status is the non-mutating view returned by CheckStatus.
type Status struct {
	Validated        bool  `json:"validated"`
	CanSend          bool  `json:"canSend"`
	RemainingSeconds int   `json:"remainingSeconds"`
	ExpiresAt        int64 `json:"expiresAt,omitempty"`
}

// Gate issues, rate-limits and verifies e-mail one-time codes.
type Gate struct {
	store    Store
	enqueuer Enqueuer
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger
}

// NewGate returns a gate storing records under "otp:<email>" in store.
func NewGate(store Store, enqueuer Enqueuer, opts ...Option) *Gate {
	g := &Gate{
		store:    kv.NewNamespace(store, KeyPrefix),
		enqueuer: enqueuer,
		cfg:      DefaultConfig(),
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestCode checks the resend rules for req.Email and schedules delivery.
// It returns the delivery task id.
func (g *Gate) RequestCode(ctx context.Context, req CodeRequest) (string, error) {
	addr, err := NormalizeEmail(req.Email)
	if err != nil {
		return "", err
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = PurposeRegistration
	}
	if !validPurpose(purpose) {
		return "", ErrInvalidPurpose
	}

	expiry := g.cfg.DefaultExpiry
	if req.ExpiresInMinutes != 0 {
		expiry = time.Duration(req.ExpiresInMinutes) * time.Minute
		if expiry < time.Minute || expiry > g.cfg.MaxExpiry {
			return "", ErrInvalidExpiry
		}
	}

	rec, found, err := g.load(ctx, addr)
	if err != nil {
		return "", err
	}
	if found {
		if rec.Validated {
			return "", ErrAlreadyVerified
		}
		if wait := rec.resendWait(g.now(), g.cfg.ResendInterval); wait > 0 {
			return "", &RateLimitError{RemainingSeconds: ceilSeconds(wait)}
		}
	}

	id, err := g.enqueuer.Enqueue(ctx, DeliveryPayload{
		Email:            addr,
		Username:         req.Username,
		Purpose:          purpose,
		ExpiresInMinutes: int(expiry / time.Minute),
	}, queue.WithTaskName(DeliveryTaskName))
	if err != nil {
		return "", errors.Join(ErrEnqueue, err)
	}

	g.logger.InfoContext(ctx, "otp delivery scheduled",
		logger.Component("otp"),
		logger.Email(addr),
		logger.TaskID(id.String()),
		slog.String("purpose", purpose),
	)
	return id.String(), nil
}

// VerifyCode checks code against the live record for email.
func (g *Gate) VerifyCode(ctx context.Context, email, code string) (VerifyResult, error) {
	addr, err := NormalizeEmail(email)
	if err != nil {
		return VerifyResult{}, err
	}
	if code == "" {
		return VerifyResult{}, ErrMissingCode
	}

	rec, found, err := g.load(ctx, addr)
	if err != nil {
		return VerifyResult{}, err
	}
	if !found {
		return VerifyResult{}, ErrNotFound
	}
	if rec.Validated {
		return VerifyResult{AlreadyValidated: true}, nil
	}

	now := g.now()
	if rec.Expired(now) {
		if err := g.store.Delete(ctx, addr); err != nil {
			return VerifyResult{}, errors.Join(ErrStore, err)
		}
		return VerifyResult{}, ErrExpired
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(rec.Code)) != 1 {
		return VerifyResult{}, g.recordFailure(ctx, addr, rec, now)
	}

	rec.Validated = true
	rec.ValidatedAt = now.UnixMilli()
	if err := kv.PutJSON(ctx, g.store, addr, rec, g.cfg.ValidatedTTL); err != nil {
		return VerifyResult{}, errors.Join(ErrStore, err)
	}

	g.logger.InfoContext(ctx, "otp verified", logger.Component("otp"), logger.Email(addr))
	return VerifyResult{}, nil
}

func (g *Gate) recordFailure(ctx context.Context, addr string, rec Record, now time.Time) error {
	rec.Attempts++
	if g.cfg.MaxAttempts > 0 && rec.Attempts >= g.cfg.MaxAttempts {
		if err := g.store.Delete(ctx, addr); err != nil {
			return errors.Join(ErrStore, err)
		}
		g.logger.WarnContext(ctx, "otp locked out",
			logger.Component("otp"),
			logger.Email(addr),
			slog.Int("attempts", rec.Attempts),
		)
		return ErrTooManyAttempts
	}

	ttl := time.Duration(rec.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := kv.PutJSON(ctx, g.store, addr, rec, ttl); err != nil {
		return errors.Join(ErrStore, err)
	}
	return ErrInvalidCode
}

// CheckStatus reports whether email is validated and whether a new code may
// be sent. It never mutates the record.
func (g *Gate) CheckStatus(ctx context.Context, email string) (Status, error) {
	addr, err := NormalizeEmail(email)
	if err != nil {
		return Status{}, err
	}

	rec, found, err := g.load(ctx, addr)
	if err != nil {
		return Status{}, err
	}
	if !found {
		return Status{CanSend: true}, nil
	}

	wait := rec.resendWait(g.now(), g.cfg.ResendInterval)
	return Status{
		Validated:        rec.Validated,
		CanSend:          wait == 0,
		RemainingSeconds: ceilSeconds(wait),
		ExpiresAt:        rec.ExpiresAt,
	}, nil
}

func (g *Gate) load(ctx context.Context, addr string) (Record, bool, error) {
	rec, err := kv.GetJSON[Record](ctx, g.store, addr)
	switch {
	case err == nil:
		return rec, true, nil
	case errors.Is(err, kv.ErrNotFound):
		return Record{}, false, nil
	default:
		return Record{}, false, errors.Join(ErrStore, fmt.Errorf("load %s: %w", addr, err))
	}
}
