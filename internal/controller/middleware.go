package controller

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/multiview/pkg/ctxlogger"
)

func (c controller) generateTimeBasedID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (c controller) requestIDMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", c.generateTimeBasedID()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}
