package tracing

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/churnlytics/internal/observability/context"
	"github.com/smallbiznis/churnlytics/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "churnlytics/http"

// untraced routes are polled by health checks and scrapers.
var untraced = map[string]struct{}{
	"/metrics":    {},
	"/api/health": {},
}

// GinMiddleware opens a server span per request, named after the matched
// route. Upload requests carry the file extension and import mode; the
// filename itself is never recorded.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		if _, skip := untraced[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.Request.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if id := obscontext.RequestIDFromContext(ctx); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if id := correlation.ExtractCorrelationID(ctx); id != "" {
			span.SetAttributes(attribute.String("correlation_id", id))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName(c.Request.Method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)...)

		if uploaded := c.GetString("upload_filename"); uploaded != "" {
			span.SetAttributes(attribute.String("upload.extension", strings.ToLower(strings.TrimPrefix(path.Ext(uploaded), "."))))
			if mode := strings.TrimSpace(c.PostForm("mode")); mode != "" {
				span.SetAttributes(attribute.String("import.mode", mode))
			}
		}

		lastErr := c.Errors.Last()
		switch {
		case status >= http.StatusInternalServerError:
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		case status >= http.StatusBadRequest && lastErr != nil:
			span.AddEvent("request rejected", trace.WithAttributes(
				attribute.String("error.message", SafeError(lastErr.Err).Error()),
			))
		}
	}
}
