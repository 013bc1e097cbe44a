package queue

import "time"

// Config holds worker, storage and enqueuer settings.
type Config struct {
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"500ms"`
	LockTimeout        time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"1m"`
	ShutdownTimeout    time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxConcurrentTasks int           `env:"QUEUE_MAX_CONCURRENT_TASKS" envDefault:"4"`
	Queues             []string      `env:"QUEUE_WORKER_QUEUES" envDefault:"default" envSeparator:","`
	RetryBackoff       time.Duration `env:"QUEUE_RETRY_BACKOFF" envDefault:"5s"`
	LockCheckInterval  time.Duration `env:"QUEUE_LOCK_CHECK_INTERVAL" envDefault:"1s"`

	DefaultQueue    string   `env:"QUEUE_DEFAULT_QUEUE" envDefault:"default"`
	DefaultPriority Priority `env:"QUEUE_DEFAULT_PRIORITY" envDefault:"50"`
	MaxRetries      int      `env:"QUEUE_MAX_RETRIES" envDefault:"3"`
}

// DefaultConfig returns the defaults used by the gateway.
func DefaultConfig() Config {
	return Config{
		PollInterval:       500 * time.Millisecond,
		LockTimeout:        time.Minute,
		ShutdownTimeout:    30 * time.Second,
		MaxConcurrentTasks: 4,
		Queues:             []string{DefaultQueueName},
		RetryBackoff:       5 * time.Second,
		LockCheckInterval:  time.Second,
		DefaultQueue:       DefaultQueueName,
		DefaultPriority:    PriorityMedium,
		MaxRetries:         3,
	}
}
