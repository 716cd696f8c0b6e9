package access

import "context"

type ctxKey string

const (
	profileKey  ctxKey = "accessProfile"
	decisionKey ctxKey = "accessDecision"
)

func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func ProfileFromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(profileKey).(*Profile)
	return p, ok && p != nil
}

func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey, d)
}

// DecisionFromContext returns the gate's decision for this request. A request
// that never passed the gate yields a zero Decision, which denies.
func DecisionFromContext(ctx context.Context) Decision {
	d, _ := ctx.Value(decisionKey).(Decision)
	return d
}
