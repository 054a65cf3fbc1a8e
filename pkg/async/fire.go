package async

import (
	"context"
	"log/slog"
)

// Fire runs fn in the background and forgets about it. The task inherits the
// caller's context values but not its cancellation, because the orchestration
// call that spawned it returns without waiting. Errors and panics are
// captured into the logger under the given task name and go no further.
func Fire(ctx context.Context, log *slog.Logger, name string, fn func(context.Context) error) {
	if log == nil {
		log = slog.Default()
	}
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.LogAttrs(bgCtx, slog.LevelError, "background task panicked",
					slog.String("task", name),
					slog.Any("panic", r),
				)
			}
		}()

		if err := fn(bgCtx); err != nil {
			log.LogAttrs(bgCtx, slog.LevelWarn, "background task failed",
				slog.String("task", name),
				slog.Any("error", err),
			)
		}
	}()
}
