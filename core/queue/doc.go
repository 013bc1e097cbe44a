// Package queue runs deferred work in the background: an Enqueuer stores
// tasks, a Worker claims and executes them, and MemoryStorage holds them
// in process memory.
//
//	storage := queue.NewMemoryStorage()
//	enqueuer, _ := queue.NewEnqueuer(storage)
//	worker, _ := queue.NewWorker(storage, queue.WithPullInterval(time.Second))
//	worker.RegisterHandlers(queue.NewTaskHandler(deliver))
//
//	g.Go(storage.Run(ctx))
//	g.Go(worker.Run(ctx))
//
//	id, err := enqueuer.Enqueue(ctx, DeliveryPayload{Email: email})
//
// Task names default to the package-qualified payload type, so
// NewTaskHandler and Enqueue agree without naming the task. A failed task is
// retried with a linear backoff until MaxRetries attempts were made and is
// then moved to the dead-letter list. Tasks without a handler go to the
// dead-letter list at once.
package queue
