package otp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sonr-io/motr-gateway/core/email"
	"github.com/sonr-io/motr-gateway/core/email/templates"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/queue"
)

// DeliveryTaskName is the queue task name of the delivery workflow.
const DeliveryTaskName = "otp.deliver"

// DeliveryPayload is the queued input of one delivery.
type DeliveryPayload struct {
	Email            string `json:"email"`
	Username         string `json:"username,omitempty"`
	Purpose          string `json:"purpose"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// Deliverer generates a code, mails it and stores the record.
type Deliverer struct {
	store    Store
	sender   email.EmailSender
	generate func() (string, error)
	now      func() time.Time
	logger   *slog.Logger
}

// DeliveryOption configures a Deliverer.
type DeliveryOption func(*Deliverer)

// WithCodeGenerator replaces GenerateCode.
func WithCodeGenerator(fn func() (string, error)) DeliveryOption {
	return func(d *Deliverer) {
		if fn != nil {
			d.generate = fn
		}
	}
}

// WithDeliveryClock overrides the time source.
func WithDeliveryClock(now func() time.Time) DeliveryOption {
	return func(d *Deliverer) {
		if now != nil {
			d.now = now
		}
	}
}

// WithDeliveryLogger sets the logger.
func WithDeliveryLogger(l *slog.Logger) DeliveryOption {
	return func(d *Deliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDeliverer returns a Deliverer writing to the same "otp:" namespace as Gate.
func NewDeliverer(store Store, sender email.EmailSender, opts ...DeliveryOption) *Deliverer {
	d := &Deliverer{
		store:    kv.NewNamespace(store, KeyPrefix),
		sender:   sender,
		generate: GenerateCode,
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handler exposes Deliver as a queue handler.
func (d *Deliverer) Handler() queue.Handler {
	return queue.NewNamedTaskHandler(DeliveryTaskName, d.Deliver)
}

// Deliver sends a fresh code to p.Email and stores its record with a TTL of
// p.ExpiresInMinutes. A failed send stores nothing so the queue can retry.
func (d *Deliverer) Deliver(ctx context.Context, p DeliveryPayload) error {
	code, err := d.generate()
	if err != nil {
		return errors.Join(ErrDelivery, err)
	}

	expiry := time.Duration(p.ExpiresInMinutes) * time.Minute
	if expiry <= 0 {
		expiry = DefaultConfig().DefaultExpiry
	}

	now := d.now()
	data := templates.OTPData{
		Code:             code,
		Username:         p.Username,
		Purpose:          p.Purpose,
		ExpiresInMinutes: int(expiry / time.Minute),
		Year:             now.Year(),
	}
	body, err := templates.Render(ctx, templates.OTPEmail(data))
	if err != nil {
		return errors.Join(ErrDelivery, err)
	}

	if err := d.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   p.Email,
		Subject:  templates.OTPSubject(p.Purpose),
		BodyHTML: body,
		BodyText: templates.OTPText(data),
		Tag:      "otp-" + p.Purpose,
	}); err != nil {
		d.logger.WarnContext(ctx, "otp email failed",
			logger.Component("otp"),
			logger.Email(p.Email),
			logger.Error(err),
		)
		return errors.Join(ErrDelivery, err)
	}

	rec := Record{
		Code:       code,
		Purpose:    p.Purpose,
		ExpiresAt:  now.Add(expiry).UnixMilli(),
		LastSentAt: now.UnixMilli(),
		CreatedAt:  now.UnixMilli(),
	}
	if err := kv.PutJSON(ctx, d.store, p.Email, rec, expiry); err != nil {
		return errors.Join(ErrStore, err)
	}

	d.logger.InfoContext(ctx, "otp email sent", logger.Component("otp"), logger.Email(p.Email))
	return nil
}
