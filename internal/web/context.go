package web

import (
	"context"
	"net/http"
	"time"
)

// cycleContext detaches a write cycle from the client connection: a save is
// a clear-then-write and must not stop halfway because the browser went
// away. Request values (request id) are kept and timeout bounds the cycle.
func cycleContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
}
