package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sonr-io/motr-gateway/core/logger"
)

// WorkerRepository claims tasks and records their outcome.
type WorkerRepository interface {
	// ClaimTask locks the next eligible task or returns ErrNoTaskToClaim.
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
	// FailTask records the error and reschedules the task while attempts remain.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
	MoveToDLQ(ctx context.Context, taskID uuid.UUID) error
}

// Worker polls a repository and runs tasks on registered handlers.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex

	pullInterval    time.Duration
	lockTimeout     time.Duration
	shutdownTimeout time.Duration
	concurrency     int
	logger          *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	tasksProcessed atomic.Int64
	tasksFailed    atomic.Int64
	activeTasks    atomic.Int32
}

// WorkerStats reports worker counters.
type WorkerStats struct {
	TasksProcessed int64
	TasksFailed    int64
	ActiveTasks    int32
	IsRunning      bool
}

// NewWorker creates a worker over repo.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	w := &Worker{
		repo:            repo,
		handlers:        make(map[string]Handler),
		queues:          []string{DefaultQueueName},
		workerID:        uuid.New(),
		pullInterval:    time.Second,
		lockTimeout:     time.Minute,
		shutdownTimeout: 30 * time.Second,
		concurrency:     1,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.sem = make(chan struct{}, w.concurrency)
	w.logger = w.logger.With(logger.Component("queue-worker"))
	return w, nil
}

// NewWorkerFromConfig creates a Worker from configuration; opts override it.
func NewWorkerFromConfig(cfg Config, repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	all := append([]WorkerOption{
		WithPullInterval(cfg.PollInterval),
		WithLockTimeout(cfg.LockTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
		WithMaxConcurrentTasks(cfg.MaxConcurrentTasks),
		WithQueues(cfg.Queues...),
	}, opts...)
	return NewWorker(repo, all...)
}

// RegisterHandlers registers handlers by name. A later handler with the
// same name replaces the earlier one.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start polls for tasks until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	runCtx := w.ctx
	w.mu.Unlock()

	w.logger.InfoContext(runCtx, "worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))

	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				// Check running state and add to the wait group under one lock
				// so Stop never waits on a count that is still growing.
				w.mu.RLock()
				if w.cancel == nil {
					w.mu.RUnlock()
					<-w.sem
					return nil
				}
				w.wg.Add(1)
				w.mu.RUnlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(runCtx); err != nil && !errors.Is(err, ErrHandlerNotFound) {
						w.logger.ErrorContext(runCtx, "failed to process task", logger.Error(err))
					}
				}()
			default:
				w.logger.DebugContext(runCtx, "all worker slots busy, skipping tick")
			}
		}
	}
}

// Stop cancels polling and waits up to the shutdown timeout for running tasks.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrNotStarted
	}
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
		return nil
	case <-time.After(w.shutdownTimeout):
		w.logger.Warn("worker shutdown timeout exceeded, abandoning running tasks",
			slog.Duration("timeout", w.shutdownTimeout))
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, w.shutdownTimeout)
	}
}

// Run returns a function for errgroup.Go that runs the worker until ctx is
// cancelled and then stops it gracefully.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- w.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = w.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (w *Worker) pullAndProcess(ctx context.Context) error {
	task, err := w.repo.ClaimTask(ctx, w.workerID, w.queues, w.lockTimeout)
	if errors.Is(err, ErrNoTaskToClaim) || (err == nil && task == nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("claim task: %w", err)
	}

	w.logger.DebugContext(ctx, "claimed task",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue))

	return w.processTask(ctx, task)
}

func (w *Worker) processTask(ctx context.Context, task *Task) (retErr error) {
	start := time.Now()

	w.activeTasks.Add(1)
	defer w.activeTasks.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			retErr = w.handleTaskFailure(ctx, task, fmt.Errorf("panic in handler: %v", r), time.Since(start))
		}
	}()

	w.mu.RLock()
	h, ok := w.handlers[task.TaskName]
	w.mu.RUnlock()
	if !ok {
		return w.handleMissingHandler(ctx, task)
	}

	// Tasks run on their own context so a shutdown lets them finish within the lock.
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.lockTimeout)
	defer cancel()

	if err := h.Handle(taskCtx, task.Payload); err != nil {
		return w.handleTaskFailure(ctx, task, err, time.Since(start))
	}
	return w.handleTaskSuccess(ctx, task, time.Since(start))
}

// handleMissingHandler dead-letters the task at once; retrying cannot help.
func (w *Worker) handleMissingHandler(ctx context.Context, task *Task) error {
	w.tasksFailed.Add(1)
	ctx = context.WithoutCancel(ctx)

	w.logger.ErrorContext(ctx, "no handler registered for task",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName))

	if err := w.repo.FailTask(ctx, task.ID, ErrHandlerNotFound.Error()+": "+task.TaskName); err != nil {
		return fmt.Errorf("mark task %s failed: %w", task.ID, err)
	}
	if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
		return fmt.Errorf("move task %s to dead letters: %w", task.ID, err)
	}
	return ErrHandlerNotFound
}

// handleTaskFailure records the failure and dead-letters the task once this
// attempt was its last.
func (w *Worker) handleTaskFailure(ctx context.Context, task *Task, execErr error, duration time.Duration) error {
	w.tasksFailed.Add(1)
	ctx = context.WithoutCancel(ctx)

	attempt := int(task.RetryCount) + 1
	w.logger.ErrorContext(ctx, "task failed",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName),
		logger.RetryCount(attempt),
		slog.Int("max_retries", int(task.MaxRetries)),
		logger.Duration(duration),
		logger.Error(execErr))

	if err := w.repo.FailTask(ctx, task.ID, execErr.Error()); err != nil {
		return fmt.Errorf("mark task %s failed: %w", task.ID, err)
	}
	if attempt < int(task.MaxRetries) {
		return nil
	}

	if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
		return fmt.Errorf("move task %s to dead letters: %w", task.ID, err)
	}
	w.logger.WarnContext(ctx, "task moved to dead letters",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName))
	return nil
}

func (w *Worker) handleTaskSuccess(ctx context.Context, task *Task, duration time.Duration) error {
	if err := w.repo.CompleteTask(context.WithoutCancel(ctx), task.ID); err != nil {
		return fmt.Errorf("mark task %s completed: %w", task.ID, err)
	}
	w.tasksProcessed.Add(1)

	w.logger.InfoContext(ctx, "task completed",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName),
		logger.Duration(duration))
	return nil
}

// Stats returns current counters.
func (w *Worker) Stats() WorkerStats {
	w.mu.RLock()
	running := w.cancel != nil
	w.mu.RUnlock()

	return WorkerStats{
		TasksProcessed: w.tasksProcessed.Load(),
		TasksFailed:    w.tasksFailed.Load(),
		ActiveTasks:    w.activeTasks.Load(),
		IsRunning:      running,
	}
}

// Healthcheck fails when the worker is stopped or every slot is busy.
func (w *Worker) Healthcheck(context.Context) error {
	stats := w.Stats()
	if !stats.IsRunning {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerNotRunning)
	}
	if capacity := int32(cap(w.sem)); stats.ActiveTasks >= capacity {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerOverloaded,
			fmt.Errorf("%d/%d slots busy", stats.ActiveTasks, capacity))
	}
	return nil
}
