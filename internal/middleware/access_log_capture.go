// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/service"
)

// Ingestion is the subset of the ingestion pipeline AccessLogCapture depends
// on, letting tests supply a fake without a real Pipeline.
type Ingestion interface {
	Log(record *models.AccessRecord)
}

var _ Ingestion = (*service.Pipeline)(nil)

// statusRecorder wraps an http.ResponseWriter to capture the status code
// written by the wrapped handler, defaulting to 200 if WriteHeader is never
// called explicitly.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// AccessLogCapture wraps the router so every request is recorded by the
// ingestion pipeline after the handler completes (spec §6's "invoke
// Ingestion.log on every request" contract). It never blocks or fails the
// request: the pipeline itself guarantees a non-blocking, never-failing Log.
//
// Parameters:
//   - pipeline: The ingestion collaborator every captured request is handed to
//
// Returns:
//   - A middleware function that can be used with an HTTP handler
func AccessLogCapture(pipeline Ingestion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newStatusRecorder(w)

			next.ServeHTTP(recorder, r)

			record := models.NewAccessRecord(
				getClientIP(r),
				r.Method,
				r.URL.String(),
				r.URL.Path,
				recorder.statusCode,
				time.Since(start),
				r.Header.Get("User-Agent"),
				r.Header.Get("Referer"),
				"",
				"",
				"",
				"",
			)

			pipeline.Log(record)
		})
	}
}
