package server

import (
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"

	"github.com/fieldops/salesrecon/pkg/application"
)

// HTTPServer assembles the router from the controllers and middleware the
// application registered and serves it gzip-compressed.
type HTTPServer struct {
	app application.Application
}

func New(app application.Application) *HTTPServer {
	return &HTTPServer{app: app}
}

func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	middlewares := s.app.Middleware()
	r.Use(middlewares...)
	for _, controller := range s.app.Controllers() {
		controller.Register(r)
		s.app.Logger().WithField("prefix", controller.Key()).Debug("routes registered")
	}

	// mux skips the middleware chain for unmatched requests, so the fallback
	// handlers are wrapped by hand to keep them in the request log.
	var notFound http.Handler = http.NotFoundHandler()
	var notAllowed http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	for i := len(middlewares) - 1; i >= 0; i-- {
		notFound = middlewares[i](notFound)
		notAllowed = middlewares[i](notAllowed)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed
	return r
}

func (s *HTTPServer) Start(socketAddress string) error {
	srv := &http.Server{
		Addr:              socketAddress,
		Handler:           gziphandler.GzipHandler(s.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
