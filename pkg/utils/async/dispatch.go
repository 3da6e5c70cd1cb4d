package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine. The handler context keeps the
// caller's values, including its logger, but not its cancellation. Errors
// and panics are reported through errutil.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in background task",
					goerr.V("task", task),
					goerr.V("panic", r),
				), "background task panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, goerr.Wrap(err, "background task failed", goerr.V("task", task)), "background task failed")
		}
	}()
}
