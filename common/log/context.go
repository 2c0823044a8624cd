package log

import "context"

type ctxKey int

const (
	runIDKey ctxKey = iota
	stepKey
)

// WithRunID tags every record logged with ctx by the run it belongs to.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

func RunIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// WithStep tags every record logged with ctx by the scenario step being executed.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

func StepFromContext(ctx context.Context) string {
	v, _ := ctx.Value(stepKey).(string)
	return v
}
