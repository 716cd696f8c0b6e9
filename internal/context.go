package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextSubjectKey ctxKey = "subjectID"

// SubjectIDFromContext returns the verified subject id, or 0 when the request
// carried no valid credential.
func SubjectIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(ContextSubjectKey).(int64); ok {
		return id
	}
	return 0
}

func ContextWithSubjectID(ctx context.Context, subjectID int64) context.Context {
	return context.WithValue(ctx, ContextSubjectKey, subjectID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
