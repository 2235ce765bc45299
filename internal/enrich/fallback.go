package enrich

import "context"

// WithFallback runs op and returns its value when op succeeds and validate
// accepts the result. Otherwise it returns fallback(). The boolean reports
// whether op's value was used.
func WithFallback[T any](ctx context.Context, op func(context.Context) (T, error), validate func(T) bool, fallback func() T) (T, bool) {
	if op != nil {
		if value, err := op(ctx); err == nil && (validate == nil || validate(value)) {
			return value, true
		}
	}
	return fallback(), false
}
