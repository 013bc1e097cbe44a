package queue

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sonr-io/motr-gateway/core/logger"
)

// MemoryStorage keeps tasks in process memory. It implements
// EnqueuerRepository and WorkerRepository and releases expired locks while
// its reaper runs.
type MemoryStorage struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*Task
	dlq      []DeadLetter
	byStatus map[TaskStatus][]uuid.UUID

	lockCheckInterval time.Duration
	retryBackoff      time.Duration
	now               func() time.Time
	logger            *slog.Logger

	running           atomic.Bool
	expiredLocksFreed atomic.Int64
}

// MemoryStorageStats reports storage counters.
type MemoryStorageStats struct {
	Tasks             int
	DeadLetters       int
	ExpiredLocksFreed int64
	IsRunning         bool
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithLockCheckInterval sets how often expired locks are released.
func WithLockCheckInterval(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d > 0 {
			ms.lockCheckInterval = d
		}
	}
}

// WithRetryBackoff sets the linear retry step: attempt n waits n*d.
func WithRetryBackoff(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d >= 0 {
			ms.retryBackoff = d
		}
	}
}

// WithStorageClock overrides the time source.
func WithStorageClock(now func() time.Time) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if now != nil {
			ms.now = now
		}
	}
}

// WithMemoryStorageLogger sets the logger.
func WithMemoryStorageLogger(l *slog.Logger) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if l != nil {
			ms.logger = l
		}
	}
}

// NewMemoryStorage creates an empty storage.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	ms := &MemoryStorage{
		tasks:             make(map[uuid.UUID]*Task),
		byStatus:          make(map[TaskStatus][]uuid.UUID),
		lockCheckInterval: time.Second,
		retryBackoff:      5 * time.Second,
		now:               time.Now,
		logger:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// NewMemoryStorageFromConfig creates a storage from configuration; opts override it.
func NewMemoryStorageFromConfig(cfg Config, opts ...MemoryStorageOption) *MemoryStorage {
	all := append([]MemoryStorageOption{
		WithLockCheckInterval(cfg.LockCheckInterval),
		WithRetryBackoff(cfg.RetryBackoff),
	}, opts...)
	return NewMemoryStorage(all...)
}

func (ms *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.tasks[task.ID]; ok {
		return ErrTaskExists
	}
	t := *task
	ms.tasks[t.ID] = &t
	ms.byStatus[t.Status] = append(ms.byStatus[t.Status], t.ID)
	return nil
}

// ClaimTask picks the highest-priority due task, oldest first within a priority.
func (ms *MemoryStorage) ClaimTask(_ context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	var best *Task
	for _, id := range ms.byStatus[TaskStatusPending] {
		t := ms.tasks[id]
		if !slices.Contains(queues, t.Queue) || t.ScheduledAt.After(now) {
			continue
		}
		if best == nil || t.Priority > best.Priority ||
			(t.Priority == best.Priority && t.ScheduledAt.Before(best.ScheduledAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockedUntil := now.Add(lockDuration)
	best.LockedUntil = &lockedUntil
	best.LockedBy = &workerID
	ms.setStatus(best, TaskStatusProcessing)

	t := *best
	return &t, nil
}

func (ms *MemoryStorage) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, err := ms.processing(taskID)
	if err != nil {
		return err
	}
	now := ms.now()
	t.ProcessedAt = &now
	t.LockedUntil, t.LockedBy = nil, nil
	ms.setStatus(t, TaskStatusCompleted)
	return nil
}

// FailTask counts the attempt. While attempts remain the task goes back to
// pending after a linear backoff; otherwise it is marked failed.
func (ms *MemoryStorage) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, err := ms.processing(taskID)
	if err != nil {
		return err
	}
	t.RetryCount++
	t.Error = &errorMsg
	t.LockedUntil, t.LockedBy = nil, nil

	if t.RetryCount >= t.MaxRetries {
		ms.setStatus(t, TaskStatusFailed)
		return nil
	}
	t.ScheduledAt = ms.now().Add(time.Duration(t.RetryCount) * ms.retryBackoff)
	ms.setStatus(t, TaskStatusPending)
	return nil
}

func (ms *MemoryStorage) MoveToDLQ(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	entry := DeadLetter{
		ID:         uuid.New(),
		TaskID:     t.ID,
		Queue:      t.Queue,
		TaskName:   t.TaskName,
		Payload:    t.Payload,
		RetryCount: t.RetryCount,
		FailedAt:   ms.now(),
	}
	if t.Error != nil {
		entry.Error = *t.Error
	}
	ms.dlq = append(ms.dlq, entry)

	ms.removeFromStatus(t.ID, t.Status)
	delete(ms.tasks, taskID)
	return nil
}

// Task returns a copy of a stored task.
func (ms *MemoryStorage) Task(_ context.Context, taskID uuid.UUID) (*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	c := *t
	return &c, nil
}

// DeadLetters returns a copy of the dead-letter list.
func (ms *MemoryStorage) DeadLetters() []DeadLetter {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return slices.Clone(ms.dlq)
}

func (ms *MemoryStorage) processing(taskID uuid.UUID) (*Task, error) {
	t, ok := ms.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status != TaskStatusProcessing {
		return nil, ErrTaskNotProcessing
	}
	return t, nil
}

func (ms *MemoryStorage) setStatus(t *Task, status TaskStatus) {
	ms.removeFromStatus(t.ID, t.Status)
	t.Status = status
	ms.byStatus[status] = append(ms.byStatus[status], t.ID)
}

func (ms *MemoryStorage) removeFromStatus(taskID uuid.UUID, status TaskStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == taskID
	})
}

// ReleaseExpiredLocks returns processing tasks whose lock has lapsed to
// pending, so a crashed handler does not strand them.
func (ms *MemoryStorage) ReleaseExpiredLocks() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	var expired []*Task
	for _, id := range ms.byStatus[TaskStatusProcessing] {
		if t := ms.tasks[id]; t.LockedUntil != nil && t.LockedUntil.Before(now) {
			expired = append(expired, t)
		}
	}
	for _, t := range expired {
		t.LockedUntil, t.LockedBy = nil, nil
		ms.setStatus(t, TaskStatusPending)
	}
	ms.expiredLocksFreed.Add(int64(len(expired)))
	return len(expired)
}

// Run returns a function for errgroup.Go that releases expired locks every
// check interval until ctx is cancelled.
func (ms *MemoryStorage) Run(ctx context.Context) func() error {
	return func() error {
		ms.running.Store(true)
		defer ms.running.Store(false)

		ticker := time.NewTicker(ms.lockCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := ms.ReleaseExpiredLocks(); n > 0 {
					ms.logger.WarnContext(ctx, "released expired task locks",
						logger.Component("queue-storage"),
						slog.Int("count", n))
				}
			}
		}
	}
}

// Stats returns current counters.
func (ms *MemoryStorage) Stats() MemoryStorageStats {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return MemoryStorageStats{
		Tasks:             len(ms.tasks),
		DeadLetters:       len(ms.dlq),
		ExpiredLocksFreed: ms.expiredLocksFreed.Load(),
		IsRunning:         ms.running.Load(),
	}
}

// Healthcheck fails when the lock reaper is not running.
func (ms *MemoryStorage) Healthcheck(context.Context) error {
	if !ms.running.Load() {
		return ErrReaperNotRunning
	}
	return nil
}
