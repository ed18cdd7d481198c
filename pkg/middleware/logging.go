package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type statusWriter struct {
	http.ResponseWriter
	status        int
	statusWritten bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.status = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger logs one line per request with a generated request id.
func RequestLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			next.ServeHTTP(sw, r)

			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sw.status,
				"duration":   time.Since(start).String(),
			}).Info("request completed")
		})
	}
}
