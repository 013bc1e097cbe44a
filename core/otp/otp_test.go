package otp_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/email"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/otp"
	"github.com/sonr-io/motr-gateway/core/queue"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (uuid.UUID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type fixture struct {
	gate  *otp.Gate
	store *kv.MemoryStore
	clock *fakeClock
	enq   *mockEnqueuer
}

// newFixture keeps the KV store on the wall clock so records written
// without a TTL never expire while the gate clock moves.
func newFixture(opts ...otp.Option) *fixture {
	f := &fixture{
		store: kv.NewMemoryStore(),
		clock: newClock(),
		enq:   new(mockEnqueuer),
	}
	f.gate = otp.NewGate(f.store, f.enq, append([]otp.Option{otp.WithClock(f.clock.Now)}, opts...)...)
	return f
}

func (f *fixture) put(t *testing.T, addr string, rec otp.Record) {
	t.Helper()
	require.NoError(t, kv.PutJSON(context.Background(), f.store, otp.KeyPrefix+addr, rec, 0))
}

func (f *fixture) get(t *testing.T, addr string) (otp.Record, error) {
	t.Helper()
	return kv.GetJSON[otp.Record](context.Background(), f.store, otp.KeyPrefix+addr)
}

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	for range 200 {
		code, err := otp.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	addr, err := otp.NormalizeEmail("  User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", addr)

	for _, bad := range []string{"", "user", "user@host", "a b@c.d", "@x.io"} {
		_, err := otp.NormalizeEmail(bad)
		assert.ErrorIs(t, err, otp.ErrInvalidEmail, bad)
	}
}

func TestRequestCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rate limited within resend interval", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{Code: "111111", LastSentAt: now.Add(-30 * time.Second).UnixMilli()})

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com"})
		var rl *otp.RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 30, rl.RemainingSeconds)
		assert.ErrorIs(t, err, otp.ErrRateLimited)
		f.enq.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("remaining seconds round up", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{LastSentAt: now.Add(-59500 * time.Millisecond).UnixMilli()})

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com"})
		var rl *otp.RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 1, rl.RemainingSeconds)
	})

	t.Run("sends after interval and returns task id", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{Code: "111111", LastSentAt: now.Add(-61 * time.Second).UnixMilli()})

		id := uuid.New()
		f.enq.On("Enqueue", ctx, otp.DeliveryPayload{
			Email:            "a@example.com",
			Username:         "alice",
			Purpose:          otp.PurposeLogin,
			ExpiresInMinutes: 15,
		}).Return(id, nil).Once()

		got, err := f.gate.RequestCode(ctx, otp.CodeRequest{
			Email:            " A@Example.com",
			Username:         "alice",
			Purpose:          otp.PurposeLogin,
			ExpiresInMinutes: 15,
		})
		require.NoError(t, err)
		assert.Equal(t, id.String(), got)
		f.enq.AssertExpectations(t)
	})

	t.Run("defaults purpose and expiry", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.enq.On("Enqueue", ctx, otp.DeliveryPayload{
			Email:            "new@example.com",
			Purpose:          otp.PurposeRegistration,
			ExpiresInMinutes: 10,
		}).Return(uuid.New(), nil).Once()

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "new@example.com"})
		require.NoError(t, err)
		f.enq.AssertExpectations(t)
	})

	t.Run("already verified", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.put(t, "a@example.com", otp.Record{Validated: true})

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com"})
		assert.ErrorIs(t, err, otp.ErrAlreadyVerified)
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture()

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "broken"})
		assert.ErrorIs(t, err, otp.ErrInvalidEmail)

		_, err = f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com", Purpose: "signup"})
		assert.ErrorIs(t, err, otp.ErrInvalidPurpose)

		_, err = f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com", ExpiresInMinutes: 61})
		assert.ErrorIs(t, err, otp.ErrInvalidExpiry)

		_, err = f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com", ExpiresInMinutes: -1})
		assert.ErrorIs(t, err, otp.ErrInvalidExpiry)
	})

	t.Run("enqueue failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.enq.On("Enqueue", ctx, mock.Anything).Return(uuid.Nil, errors.New("queue full")).Once()

		_, err := f.gate.RequestCode(ctx, otp.CodeRequest{Email: "a@example.com"})
		assert.ErrorIs(t, err, otp.ErrEnqueue)
	})
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("wrong then right then already validated", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{
			Code:       "123456",
			ExpiresAt:  now.Add(10 * time.Minute).UnixMilli(),
			LastSentAt: now.UnixMilli(),
			CreatedAt:  now.UnixMilli(),
		})

		_, err := f.gate.VerifyCode(ctx, "a@example.com", "000000")
		assert.ErrorIs(t, err, otp.ErrInvalidCode)
		rec, err := f.get(t, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, 1, rec.Attempts)

		res, err := f.gate.VerifyCode(ctx, "A@example.com", "123456")
		require.NoError(t, err)
		assert.False(t, res.AlreadyValidated)

		rec, err = f.get(t, "a@example.com")
		require.NoError(t, err)
		assert.True(t, rec.Validated)
		assert.Equal(t, now.UnixMilli(), rec.ValidatedAt)

		res, err = f.gate.VerifyCode(ctx, "a@example.com", "999999")
		require.NoError(t, err)
		assert.True(t, res.AlreadyValidated)
	})

	t.Run("expired record is deleted and status allows resend", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{
			Code:       "123456",
			ExpiresAt:  now.Add(10 * time.Minute).UnixMilli(),
			LastSentAt: now.UnixMilli(),
		})
		f.clock.Advance(11 * time.Minute)

		_, err := f.gate.VerifyCode(ctx, "a@example.com", "123456")
		assert.ErrorIs(t, err, otp.ErrExpired)

		_, err = f.get(t, "a@example.com")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		st, err := f.gate.CheckStatus(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, st.CanSend)
		assert.False(t, st.Validated)
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		_, err := f.gate.VerifyCode(ctx, "a@example.com", "123456")
		assert.ErrorIs(t, err, otp.ErrNotFound)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		_, err := f.gate.VerifyCode(ctx, "a@example.com", "")
		assert.ErrorIs(t, err, otp.ErrMissingCode)
	})

	t.Run("too many attempts deletes record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(otp.WithMaxAttempts(3))
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{Code: "123456", ExpiresAt: now.Add(time.Minute).UnixMilli()})

		for range 2 {
			_, err := f.gate.VerifyCode(ctx, "a@example.com", "000000")
			assert.ErrorIs(t, err, otp.ErrInvalidCode)
		}
		_, err := f.gate.VerifyCode(ctx, "a@example.com", "000000")
		assert.ErrorIs(t, err, otp.ErrTooManyAttempts)

		_, err = f.gate.VerifyCode(ctx, "a@example.com", "123456")
		assert.ErrorIs(t, err, otp.ErrNotFound)
	})

	t.Run("zero max attempts disables lockout", func(t *testing.T) {
		t.Parallel()
		f := newFixture(otp.WithMaxAttempts(0))
		now := f.clock.Now()
		f.put(t, "a@example.com", otp.Record{Code: "123456", ExpiresAt: now.Add(time.Minute).UnixMilli()})

		for range 10 {
			_, err := f.gate.VerifyCode(ctx, "a@example.com", "000000")
			assert.ErrorIs(t, err, otp.ErrInvalidCode)
		}
		_, err := f.gate.VerifyCode(ctx, "a@example.com", "123456")
		assert.NoError(t, err)
	})
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing record can send", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		st, err := f.gate.CheckStatus(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, otp.Status{CanSend: true}, st)
	})

	t.Run("recent send reports wait without mutating", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		now := f.clock.Now()
		rec := otp.Record{
			Code:       "123456",
			ExpiresAt:  now.Add(9 * time.Minute).UnixMilli(),
			LastSentAt: now.Add(-20 * time.Second).UnixMilli(),
		}
		f.put(t, "a@example.com", rec)

		st, err := f.gate.CheckStatus(ctx, "a@example.com")
		require.NoError(t, err)
		assert.False(t, st.CanSend)
		assert.Equal(t, 40, st.RemainingSeconds)
		assert.Equal(t, rec.ExpiresAt, st.ExpiresAt)

		got, err := f.get(t, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		_, err := f.gate.CheckStatus(ctx, "")
		assert.ErrorIs(t, err, otp.ErrInvalidEmail)
	})
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}

func TestDeliverer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fixedCode := func() (string, error) { return "424242", nil }

	t.Run("sends then stores record with ttl", func(t *testing.T) {
		t.Parallel()
		clock := newClock()
		store := kv.NewMemoryStore(kv.WithClock(clock.Now))
		sender := new(mockSender)
		var sent email.SendEmailParams
		sender.On("SendEmail", ctx, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(email.SendEmailParams) }).
			Return(nil).Once()

		d := otp.NewDeliverer(store, sender, otp.WithCodeGenerator(fixedCode), otp.WithDeliveryClock(clock.Now))
		require.NoError(t, d.Deliver(ctx, otp.DeliveryPayload{
			Email:            "a@example.com",
			Purpose:          otp.PurposeLogin,
			ExpiresInMinutes: 5,
		}))
		sender.AssertExpectations(t)

		assert.Equal(t, "a@example.com", sent.SendTo)
		assert.Equal(t, "Sonr Login Verification Code", sent.Subject)
		assert.Contains(t, sent.BodyHTML, "424242")
		assert.Contains(t, sent.BodyHTML, "Valid for 5 minutes")
		assert.Contains(t, sent.BodyText, "Your verification code: 424242")

		rec, err := kv.GetJSON[otp.Record](ctx, store, "otp:a@example.com")
		require.NoError(t, err)
		now := clock.Now().UnixMilli()
		assert.Equal(t, "424242", rec.Code)
		assert.Equal(t, now, rec.LastSentAt)
		assert.Equal(t, now, rec.CreatedAt)
		assert.Equal(t, now+5*60*1000, rec.ExpiresAt)
		assert.False(t, rec.Validated)

		clock.Advance(5*time.Minute + time.Second)
		_, err = store.Get(ctx, "otp:a@example.com")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("failed send stores nothing", func(t *testing.T) {
		t.Parallel()
		store := kv.NewMemoryStore()
		sender := new(mockSender)
		sender.On("SendEmail", ctx, mock.Anything).Return(email.ErrFailedToSendEmail).Once()

		d := otp.NewDeliverer(store, sender, otp.WithCodeGenerator(fixedCode))
		err := d.Deliver(ctx, otp.DeliveryPayload{Email: "a@example.com", Purpose: otp.PurposeRegistration, ExpiresInMinutes: 10})
		assert.ErrorIs(t, err, otp.ErrDelivery)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)

		_, err = store.Get(ctx, "otp:a@example.com")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("handler name", func(t *testing.T) {
		t.Parallel()
		d := otp.NewDeliverer(kv.NewMemoryStore(), new(mockSender))
		assert.Equal(t, otp.DeliveryTaskName, d.Handler().Name())
	})
}

func TestRequestAndDeliverThroughQueue(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := kv.NewMemoryStore()
	storage := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	var mu sync.Mutex
	var delivered []email.SendEmailParams
	sender := email.SenderFunc(func(_ context.Context, p email.SendEmailParams) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, p)
		return nil
	})

	worker, err := queue.NewWorker(storage, queue.WithPullInterval(10*time.Millisecond))
	require.NoError(t, err)
	worker.RegisterHandlers(otp.NewDeliverer(store, sender, otp.WithCodeGenerator(func() (string, error) {
		return "135790", nil
	})).Handler())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx)() }()

	gate := otp.NewGate(store, enq)
	id, err := gate.RequestCode(ctx, otp.CodeRequest{Email: "flow@example.com"})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := gate.CheckStatus(ctx, "flow@example.com")
		return err == nil && !st.CanSend
	}, 2*time.Second, 10*time.Millisecond)

	_, err = gate.RequestCode(ctx, otp.CodeRequest{Email: "flow@example.com"})
	assert.ErrorIs(t, err, otp.ErrRateLimited)

	_, err = gate.VerifyCode(ctx, "flow@example.com", "135790")
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, delivered, 1)
	assert.Equal(t, "flow@example.com", delivered[0].SendTo)
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
