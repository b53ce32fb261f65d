package assets

import (
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/logger"
)

// Result is the outcome of an asynchronous model load.
type Result struct {
	Model *Model
	Err   error
}

// LoadAsync loads the model at path on a new goroutine. The returned channel
// receives exactly one Result and is then closed. If ctx is cancelled first,
// the Result carries ctx.Err() and the decoded model is discarded.
func (l *ModelLoader) LoadAsync(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		done := make(chan Result, 1)
		go func() {
			m, err := l.Load(path)
			done <- Result{Model: m, Err: err}
		}()

		select {
		case r := <-done:
			if r.Err != nil {
				logger.Error("model load failed", zap.String("path", path), zap.Error(r.Err))
			}
			out <- r
		case <-ctx.Done():
			logger.Warn("model load cancelled", zap.String("path", path))
			out <- Result{Err: ctx.Err()}
		}
	}()

	return out
}
