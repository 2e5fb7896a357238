package localstate

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Repository stores opaque JSON documents per session under a fixed name.
// Get returns domain.ErrNotFound when nothing was stored.
type Repository interface {
	Get(ctx context.Context, session, name string) ([]byte, error)
	Put(ctx context.Context, session, name string, value []byte) error
	Delete(ctx context.Context, session, name string) error
}

func componentLogger(logger logrus.FieldLogger, backend string) logrus.FieldLogger {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return logger.WithFields(logrus.Fields{"component": "localstate", "backend": backend})
}
