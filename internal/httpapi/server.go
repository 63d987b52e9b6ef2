package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/service"
)

// NewServer creates and configures a new HTTP server
func NewServer(addr string, logger *logging.Logger, svc *service.Service, hub *service.Hub) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewHandler(logger, svc, hub),
	}
}

// NewHandler builds the routed, logged handler tree
func NewHandler(logger *logging.Logger, svc *service.Service, hub *service.Hub) http.Handler {
	// Create a new router (multiplexer) to handle different routes
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)

	// Evaluation lifecycle
	mux.HandleFunc("/navigate", navigateHandler(svc))
	mux.HandleFunc("/request", requestHandler(svc))
	mux.HandleFunc("/content", contentHandler(svc))
	mux.HandleFunc("/cpu-sample", cpuSampleHandler(svc))
	mux.HandleFunc("/complete", completeHandler(svc))
	mux.HandleFunc("/close", closeHandler(svc))
	mux.HandleFunc("/result", resultHandler(svc))
	mux.HandleFunc("/analyze", analyzeHandler(svc))

	// Stats and pattern management
	mux.HandleFunc("/stats", statsHandler(svc))
	mux.HandleFunc("/stats/reset", statsResetHandler(svc))
	mux.HandleFunc("/patterns", patternsHandler(svc))
	mux.HandleFunc("/patterns/reload", patternsReloadHandler(svc))

	// Server-sent event stream
	mux.HandleFunc("/events", eventsHandler(hub))

	// Wrap the mux with logging middleware
	return loggingMiddleware(logger, mux)
}

// healthHandler handles GET requests to /health
// Returns a simple JSON response indicating the service is healthy
func healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "ok",
		"service": "threatlens-api",
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON is a helper function to write JSON responses
// It sets the correct Content-Type header and encodes the data as JSON
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// If encoding fails, the error is ignored (headers are already sent)
	json.NewEncoder(w).Encode(data)
}
