package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jhaveri/fie/internal/api/handlers"
	"github.com/jhaveri/fie/pkg/logger"
)

// NewRouter wires all HTTP routes.
func NewRouter(
	signalsHandler *handlers.SignalsHandler,
	adviceHandler *handlers.AdviceHandler,
	pipelineHandler *handlers.PipelineHandler,
	hub *Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/signals/{symbol}", signalsHandler.GetSignal).Methods("GET")
	api.HandleFunc("/sectors", signalsHandler.GetSectors).Methods("GET")
	api.HandleFunc("/clients/{clientID}/recommendations", adviceHandler.GetRecommendations).Methods("GET")
	api.HandleFunc("/pipeline/run", pipelineHandler.TriggerRun).Methods("POST")

	r.HandleFunc("/ws/runs", hub.ServeWS)

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "fie-api",
	})
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
