package queue

import "errors"

var (
	ErrRepositoryNil     = errors.New("queue: repository is nil")
	ErrPayloadNil        = errors.New("queue: payload is nil")
	ErrInvalidPriority   = errors.New("queue: priority must be between 0 and 100")
	ErrNoHandlers        = errors.New("queue: no handlers registered")
	ErrNoTaskToClaim     = errors.New("queue: no task to claim")
	ErrHandlerNotFound   = errors.New("queue: no handler registered for task")
	ErrTaskNotFound      = errors.New("queue: task not found")
	ErrTaskNotProcessing = errors.New("queue: task is not processing")
	ErrTaskExists        = errors.New("queue: task already exists")
	ErrAlreadyStarted    = errors.New("queue: already started")
	ErrNotStarted        = errors.New("queue: not started")
	ErrShutdownTimeout   = errors.New("queue: shutdown timeout exceeded")
	ErrHealthcheckFailed = errors.New("queue: healthcheck failed")
	ErrWorkerNotRunning  = errors.New("queue: worker is not running")
	ErrWorkerOverloaded  = errors.New("queue: worker is overloaded")
	ErrReaperNotRunning  = errors.New("queue: lock reaper is not running")
)
