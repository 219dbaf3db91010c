package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party router
// dependency needed for this surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAPIRoutes wires the read API and subscription management.
func (r *Router) RegisterAPIRoutes(status *StatusHandler, measurements *MeasurementHandler, subscriptions *SubscriptionHandler) {
	r.Handle("/api/status", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		status.GetStatus(w, req)
	})

	r.Handle("/api/measurements", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		measurements.GetHistory(w, req)
	})

	r.Handle("/api/measurements/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		measurements.ExportHistory(w, req)
	})

	r.Handle("/api/subscribe", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			subscriptions.Subscribe(w, req)
		case http.MethodPut:
			subscriptions.UpdateSettings(w, req)
		case http.MethodGet:
			subscriptions.GetSettings(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
