package core

import (
	"context"

	"github.com/JonMunkholm/stockbook/internal/logging"
)

// ContextWithCycleID tags ctx with the id of the running load, import or
// save cycle. Collaborators read it back with CycleIDFromContext to
// correlate their own logs and requests.
func ContextWithCycleID(ctx context.Context, id string) context.Context {
	return logging.ContextWithCycleID(ctx, id)
}

// CycleIDFromContext returns the cycle id stored in ctx, or "".
func CycleIDFromContext(ctx context.Context) string {
	return logging.CycleID(ctx)
}
