package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pagethread/pkg/api/handlers"
	"pagethread/pkg/auth"
	"pagethread/pkg/telemetry"
)

// Handler builds the /v1 API router with auth and metrics middleware
// applied. Mutating routes additionally require a signed author.
func Handler(sec auth.SecConfig) http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterPages(v1)
	handlers.RegisterComments(v1)

	var h http.Handler = r
	h = auth.RequireSignedAuthor(h)
	h = auth.Middleware(sec)(h)
	h = metricsMiddleware(h)
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		telemetry.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		telemetry.HTTPRequestSeconds.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
