package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"moviweb/models"
	"moviweb/services/library"
	"moviweb/services/omdb"
)

type movieService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListMovies(ctx context.Context, userID string) ([]models.Movie, error)
	GetMovie(ctx context.Context, movieID string) (*models.Movie, error)
	AddMovie(ctx context.Context, userID, title, director string, year int, posterURL string) (*models.Movie, error)
	UpdateMovie(ctx context.Context, movieID string, upd models.MovieUpdate) (*models.Movie, error)
	DeleteMovie(ctx context.Context, movieID string) error
}

type metadataService interface {
	Lookup(ctx context.Context, title string) (*models.MovieInfo, error)
}

var (
	_ movieService    = (*library.Service)(nil)
	_ metadataService = (*omdb.Client)(nil)
)

// MoviesHandler exposes the per-user movie list endpoints. Metadata
// enrichment failures are absorbed here: an unreachable provider degrades to
// the user-supplied fields and never blocks the create or update.
type MoviesHandler struct {
	Library  movieService
	Metadata metadataService
}

func NewMoviesHandler(lib movieService, meta metadataService) *MoviesHandler {
	return &MoviesHandler{Library: lib, Metadata: meta}
}

// List returns the owning user together with every movie in their list.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	user, err := h.Library.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	movies, err := h.Library.ListMovies(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "movies": movies})
}

// Add creates a movie in the user's list, enriched from OMDb when possible.
func (h *MoviesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var request struct {
		Title     string `json:"title"`
		Director  string `json:"director"`
		Year      int    `json:"year"`
		PosterURL string `json:"posterUrl"`
	}
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	title := strings.TrimSpace(request.Title)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title is required"})
		return
	}

	director, year, posterURL := request.Director, request.Year, request.PosterURL

	if info := h.enrich(r.Context(), title); info != nil {
		if info.Title != "" {
			title = info.Title
		}
		if director == "" {
			director = info.Director
			if director == "" {
				director = "Unknown"
			}
		}
		if year == 0 {
			year = info.Year
		}
		if posterURL == "" {
			posterURL = info.PosterURL
		}
	}

	movie, err := h.Library.AddMovie(r.Context(), userID, title, director, year, posterURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

// Update applies a partial update to a movie. A title change or an explicit
// refetch re-queries OMDb, with the same degradation rule as Add.
func (h *MoviesHandler) Update(w http.ResponseWriter, r *http.Request) {
	movieID := mux.Vars(r)["movieID"]

	var request struct {
		Title     *string `json:"title"`
		Director  *string `json:"director"`
		Year      *int    `json:"year"`
		PosterURL *string `json:"posterUrl"`
		Refetch   bool    `json:"refetch"`
	}
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	movie, err := h.Library.GetMovie(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	upd := models.MovieUpdate{
		Title:     request.Title,
		Director:  request.Director,
		Year:      request.Year,
		PosterURL: request.PosterURL,
	}

	if request.Refetch || request.Title != nil {
		lookupTitle := movie.Title
		if request.Title != nil && strings.TrimSpace(*request.Title) != "" {
			lookupTitle = *request.Title
		}
		if info := h.enrich(r.Context(), lookupTitle); info != nil {
			if info.Title != "" {
				upd.Title = &info.Title
			}
			if info.Director != "" && upd.Director == nil {
				upd.Director = &info.Director
			}
			if info.Year != 0 && upd.Year == nil {
				upd.Year = &info.Year
			}
			if info.PosterURL != "" && upd.PosterURL == nil {
				upd.PosterURL = &info.PosterURL
			}
		}
	}

	updated, err := h.Library.UpdateMovie(r.Context(), movieID, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a movie from its owner's list.
func (h *MoviesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	movieID := mux.Vars(r)["movieID"]
	if err := h.Library.DeleteMovie(r.Context(), movieID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// enrich looks the title up on OMDb, returning nil when no metadata could be
// fetched. Provider failures are logged and absorbed.
func (h *MoviesHandler) enrich(ctx context.Context, title string) *models.MovieInfo {
	info, err := h.Metadata.Lookup(ctx, title)
	if err != nil {
		if errors.Is(err, omdb.ErrNotFound) {
			log.Printf("[movies] no omdb match for %q", title)
		} else {
			log.Printf("[movies] omdb lookup for %q unavailable: %v", title, err)
		}
		return nil
	}
	return info
}
