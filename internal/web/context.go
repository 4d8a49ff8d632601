package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/ClimateDash/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for ingest logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}
