package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"nestquest/internal/upgrade"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// NewRouter registers every route. An empty origins list allows any origin.
func NewRouter(h *Handler, origins []string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, cors(origins))

	r.HandleFunc("/tier3", h.Tier3).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/upgrades/{identifier:[0-9]+}", h.GetUpgrade).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// requestID tags the request context with the caller's id or a fresh uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(upgrade.WithRequestID(r.Context(), id)))
	})
}

// cors allows GET and POST with a content-type header and answers preflights.
func cors(origins []string) mux.MiddlewareFunc {
	allowAny := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || allowed[origin]) {
				if allowAny {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
				w.Header().Set("Access-Control-Allow-Headers", "content-type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
