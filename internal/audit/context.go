package audit

import "context"

type ctxKey int

const (
	operatorKey ctxKey = iota
	traceKey
)

// WithOperator records who triggered the action, for the audit trail only.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

func Operator(ctx context.Context) string {
	s, _ := ctx.Value(operatorKey).(string)
	return s
}

func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

func Trace(ctx context.Context) string {
	s, _ := ctx.Value(traceKey).(string)
	return s
}
