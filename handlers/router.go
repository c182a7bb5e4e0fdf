package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// CORS middleware to allow cross-origin requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter constructs the mux router with the health probe and the JSON API
// routes for users and movies.
func NewRouter(users *UsersHandler, movies *MoviesHandler) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users", users.List).Methods(http.MethodGet)
	api.HandleFunc("/users", users.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}", users.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/users/{userID}/movies", movies.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/movies", movies.Add).Methods(http.MethodPost)
	api.HandleFunc("/movies/{movieID}", movies.Update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/movies/{movieID}", movies.Delete).Methods(http.MethodDelete)

	return r
}
