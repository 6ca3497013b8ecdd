package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"brewdash/backend/services/dashboard-service/internal/http/handlers"
	"brewdash/backend/services/dashboard-service/internal/models"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	PageHandler     *handlers.PageHandler
	ProxyHandler    *handlers.ProxyHandler
	SnapshotHandler *handlers.SnapshotHandler
	WSHandler       *handlers.WSHandler
	HealthHandler   http.HandlerFunc
	AllowedOrigins  []string
}

// NewRouter wires HTTP routes. API routes answer CORS preflights.
func NewRouter(deps RouterDeps) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = jsonStatus(http.StatusNotFound, "not found")
	router.MethodNotAllowedHandler = jsonStatus(http.StatusMethodNotAllowed, "method not allowed")

	router.Handle("/health", deps.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/", deps.PageHandler.Index).Methods(http.MethodGet)
	router.HandleFunc("/ws", deps.WSHandler.Serve).Methods(http.MethodGet)

	// Full paths on the root router: a subrouter answers a method mismatch with 404.
	router.HandleFunc("/api/getTelemetryByRange", deps.ProxyHandler.GetTelemetryByRange).Methods(http.MethodGet)
	router.HandleFunc("/api/snapshot", deps.SnapshotHandler.Get).Methods(http.MethodGet)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization"},
	})
	return c.Handler(router)
}

func jsonStatus(status int, detail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(models.ErrorBody{Kind: models.ErrorKindBadRequest, Detail: detail})
	})
}
