package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/queue"
)

type deliverPayload struct {
	Email string `json:"email"`
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateTask(ctx context.Context, task *queue.Task) error {
	return m.Called(ctx, task).Error(0)
}

func TestEnqueuer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nil repository", func(t *testing.T) {
		t.Parallel()
		_, err := queue.NewEnqueuer(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("builds task and returns id", func(t *testing.T) {
		t.Parallel()
		fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		repo := new(mockRepo)
		var created *queue.Task
		repo.On("CreateTask", ctx, mock.AnythingOfType("*queue.Task")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*queue.Task) }).
			Return(nil)

		e, err := queue.NewEnqueuer(repo, queue.WithEnqueuerClock(func() time.Time { return fixed }))
		require.NoError(t, err)

		id, err := e.Enqueue(ctx, deliverPayload{Email: "a@b.c"}, queue.WithPriority(queue.PriorityHigh))
		require.NoError(t, err)
		repo.AssertExpectations(t)

		require.NotNil(t, created)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, "queue_test.deliverPayload", created.TaskName)
		assert.Equal(t, queue.DefaultQueueName, created.Queue)
		assert.Equal(t, queue.PriorityHigh, created.Priority)
		assert.EqualValues(t, 3, created.MaxRetries)
		assert.Equal(t, fixed, created.ScheduledAt)
		assert.JSONEq(t, `{"email":"a@b.c"}`, string(created.Payload))
	})

	t.Run("rejects nil payload and bad priority", func(t *testing.T) {
		t.Parallel()
		e, err := queue.NewEnqueuer(new(mockRepo))
		require.NoError(t, err)

		_, err = e.Enqueue(ctx, nil)
		assert.ErrorIs(t, err, queue.ErrPayloadNil)

		_, err = e.Enqueue(ctx, deliverPayload{}, queue.WithPriority(101))
		assert.ErrorIs(t, err, queue.ErrInvalidPriority)
	})

	t.Run("wraps repository error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		repo := new(mockRepo)
		repo.On("CreateTask", ctx, mock.Anything).Return(boom)

		e, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)
		id, err := e.Enqueue(ctx, deliverPayload{})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, uuid.Nil, id)
	})
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newTask := func(name string, p queue.Priority, at time.Time) *queue.Task {
		return &queue.Task{
			ID: uuid.New(), Queue: queue.DefaultQueueName, TaskName: name,
			Status: queue.TaskStatusPending, Priority: p, MaxRetries: 2, ScheduledAt: at,
		}
	}

	t.Run("claims by priority then age", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		ms := queue.NewMemoryStorage()
		require.NoError(t, ms.CreateTask(ctx, newTask("low", queue.PriorityLow, now.Add(-time.Minute))))
		require.NoError(t, ms.CreateTask(ctx, newTask("high-new", queue.PriorityHigh, now.Add(-time.Second))))
		require.NoError(t, ms.CreateTask(ctx, newTask("high-old", queue.PriorityHigh, now.Add(-time.Hour))))
		require.NoError(t, ms.CreateTask(ctx, newTask("future", queue.PriorityMax, now.Add(time.Hour))))

		var order []string
		for {
			task, err := ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
			if errors.Is(err, queue.ErrNoTaskToClaim) {
				break
			}
			require.NoError(t, err)
			order = append(order, task.TaskName)
		}
		assert.Equal(t, []string{"high-old", "high-new", "low"}, order)
	})

	t.Run("fail retries then dead letters", func(t *testing.T) {
		t.Parallel()
		ms := queue.NewMemoryStorage(queue.WithRetryBackoff(0))
		task := newTask("x", queue.PriorityDefault, time.Now().Add(-time.Second))
		require.NoError(t, ms.CreateTask(ctx, task))

		claimed, err := ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		require.NoError(t, ms.FailTask(ctx, claimed.ID, "first"))

		stored, err := ms.Task(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, queue.TaskStatusPending, stored.Status)

		claimed, err = ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		require.NoError(t, ms.FailTask(ctx, claimed.ID, "second"))

		stored, err = ms.Task(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, queue.TaskStatusFailed, stored.Status)

		require.NoError(t, ms.MoveToDLQ(ctx, task.ID))
		dl := ms.DeadLetters()
		require.Len(t, dl, 1)
		assert.Equal(t, "second", dl[0].Error)
		_, err = ms.Task(ctx, task.ID)
		assert.ErrorIs(t, err, queue.ErrTaskNotFound)
	})

	t.Run("expired locks are released", func(t *testing.T) {
		t.Parallel()
		ms := queue.NewMemoryStorage()
		require.NoError(t, ms.CreateTask(ctx, newTask("x", queue.PriorityDefault, time.Now().Add(-time.Second))))

		_, err := ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, -time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, ms.ReleaseExpiredLocks())

		_, err = ms.ClaimTask(ctx, uuid.New(), []string{queue.DefaultQueueName}, time.Minute)
		assert.NoError(t, err)
	})

	t.Run("complete requires processing", func(t *testing.T) {
		t.Parallel()
		ms := queue.NewMemoryStorage()
		task := newTask("x", queue.PriorityDefault, time.Now())
		require.NoError(t, ms.CreateTask(ctx, task))
		assert.ErrorIs(t, ms.CompleteTask(ctx, task.ID), queue.ErrTaskNotProcessing)
		assert.ErrorIs(t, ms.CompleteTask(ctx, uuid.New()), queue.ErrTaskNotFound)
	})
}

func TestWorker(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, h queue.Handler) (*queue.MemoryStorage, *queue.Enqueuer, *queue.Worker) {
		t.Helper()
		ms := queue.NewMemoryStorage(queue.WithRetryBackoff(0))
		e, err := queue.NewEnqueuer(ms)
		require.NoError(t, err)
		w, err := queue.NewWorker(ms, queue.WithPullInterval(5*time.Millisecond), queue.WithMaxConcurrentTasks(2))
		require.NoError(t, err)
		if h != nil {
			w.RegisterHandlers(h)
		}
		return ms, e, w
	}

	start := func(t *testing.T, w *queue.Worker) context.CancelFunc {
		t.Helper()
		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Run(ctx)())
		}()
		return func() {
			cancel()
			wg.Wait()
		}
	}

	t.Run("processes typed payload", func(t *testing.T) {
		t.Parallel()
		got := make(chan string, 1)
		ms, e, w := setup(t, queue.NewTaskHandler(func(_ context.Context, p deliverPayload) error {
			got <- p.Email
			return nil
		}))
		stop := start(t, w)
		defer stop()

		id, err := e.Enqueue(context.Background(), deliverPayload{Email: "a@b.c"})
		require.NoError(t, err)

		select {
		case email := <-got:
			assert.Equal(t, "a@b.c", email)
		case <-time.After(2 * time.Second):
			t.Fatal("task not processed")
		}
		assert.Eventually(t, func() bool {
			task, err := ms.Task(context.Background(), id)
			return err == nil && task.Status == queue.TaskStatusCompleted
		}, time.Second, 5*time.Millisecond)
		assert.NoError(t, w.Healthcheck(context.Background()))
	})

	t.Run("failing task is retried then dead lettered", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		ms, e, w := setup(t, queue.NewTaskHandler(func(context.Context, deliverPayload) error {
			calls.Add(1)
			return errors.New("smtp down")
		}))
		stop := start(t, w)
		defer stop()

		_, err := e.Enqueue(context.Background(), deliverPayload{}, queue.WithMaxRetries(3))
		require.NoError(t, err)

		assert.Eventually(t, func() bool { return len(ms.DeadLetters()) == 1 }, 2*time.Second, 5*time.Millisecond)
		assert.EqualValues(t, 3, calls.Load())
		assert.Equal(t, "smtp down", ms.DeadLetters()[0].Error)
	})

	t.Run("panicking handler counts as failure", func(t *testing.T) {
		t.Parallel()
		ms, e, w := setup(t, queue.NewTaskHandler(func(context.Context, deliverPayload) error {
			panic("nil map")
		}))
		stop := start(t, w)
		defer stop()

		_, err := e.Enqueue(context.Background(), deliverPayload{}, queue.WithMaxRetries(1))
		require.NoError(t, err)
		assert.Eventually(t, func() bool { return len(ms.DeadLetters()) == 1 }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("task without handler is dead lettered", func(t *testing.T) {
		t.Parallel()
		ms, e, w := setup(t, queue.NewNamedTaskHandler("other", func(context.Context, deliverPayload) error { return nil }))
		stop := start(t, w)
		defer stop()

		_, err := e.Enqueue(context.Background(), deliverPayload{})
		require.NoError(t, err)
		assert.Eventually(t, func() bool { return len(ms.DeadLetters()) == 1 }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("start without handlers", func(t *testing.T) {
		t.Parallel()
		_, _, w := setup(t, nil)
		assert.ErrorIs(t, w.Start(context.Background()), queue.ErrNoHandlers)
		assert.ErrorIs(t, w.Stop(), queue.ErrNotStarted)
		assert.ErrorIs(t, w.Healthcheck(context.Background()), queue.ErrWorkerNotRunning)
	})
}
