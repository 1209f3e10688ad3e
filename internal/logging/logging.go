// README: Standardized log lines (module/action/request_id) on top of the std logger.
package logging

import (
	"context"
	"log"
	"strings"
)

type ctxKey struct{}

// WithRequestID stores the request id so services can tag their log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// Event prints one line per domain action. Keep payloads summarized; no customer PII.
func Event(requestID, module, action, message string) {
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, strings.TrimSpace(requestID), message)
}

// EventCtx is Event with the request id taken from ctx.
func EventCtx(ctx context.Context, module, action, message string) {
	Event(RequestID(ctx), module, action, message)
}
