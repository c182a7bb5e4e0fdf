package library_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"moviweb/internal/database"
	"moviweb/models"
	"moviweb/services/library"
)

func newTestService(t *testing.T) *library.Service {
	t.Helper()

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "moviweb.sqlite3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return library.NewService(db.Connection())
}

func TestCreateAndListUsers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bob, err := svc.CreateUser(ctx, "Bob")
	require.NoError(t, err)
	require.NotEmpty(t, bob.ID)

	alice, err := svc.CreateUser(ctx, "  Alice  ")
	require.NoError(t, err)
	require.Equal(t, "Alice", alice.Name)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "Alice", users[0].Name)
	require.Equal(t, "Bob", users[1].Name)
}

func TestCreateUserEmptyName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "   ")
	require.ErrorIs(t, err, library.ErrInvalid)
}

func TestAddMovieAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	movie, err := svc.AddMovie(ctx, alice.ID, "Dune", "Villeneuve", 2021, "https://example.com/dune.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, movie.ID)

	movies, err := svc.ListMovies(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	require.Equal(t, "Dune", movies[0].Title)
	require.Equal(t, "Villeneuve", movies[0].Director)
	require.Equal(t, 2021, movies[0].Year)
	require.Equal(t, "https://example.com/dune.jpg", movies[0].PosterURL)
}

func TestListMoviesEmptyAndUnknownUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	movies, err := svc.ListMovies(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, movies)

	_, err = svc.ListMovies(ctx, "no-such-user")
	require.ErrorIs(t, err, library.ErrNotFound)
}

func TestAddMovieDuplicateTitle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	_, err = svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)

	_, err = svc.AddMovie(ctx, alice.ID, "Dune", "Villeneuve", 2021, "")
	require.ErrorIs(t, err, library.ErrConflict)

	movies, err := svc.ListMovies(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, movies, 1)
}

func TestAddMovieSameTitleDifferentUsers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, "Bob")
	require.NoError(t, err)

	_, err = svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)
	_, err = svc.AddMovie(ctx, bob.ID, "Dune", "", 0, "")
	require.NoError(t, err)
}

func TestAddMovieValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	_, err = svc.AddMovie(ctx, alice.ID, "   ", "", 0, "")
	require.ErrorIs(t, err, library.ErrInvalid)

	_, err = svc.AddMovie(ctx, "no-such-user", "Dune", "", 0, "")
	require.ErrorIs(t, err, library.ErrNotFound)
}

func TestConcurrentAddMovieExactlyOneWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, library.ErrConflict)
	}
	require.Equal(t, 1, succeeded)

	movies, err := svc.ListMovies(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, movies, 1)
}

func TestUpdateMoviePartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	movie, err := svc.AddMovie(ctx, alice.ID, "Dune", "Villeneuve", 2021, "https://example.com/dune.jpg")
	require.NoError(t, err)

	year := 1984
	updated, err := svc.UpdateMovie(ctx, movie.ID, models.MovieUpdate{Year: &year})
	require.NoError(t, err)

	require.Equal(t, 1984, updated.Year)
	require.Equal(t, "Dune", updated.Title)
	require.Equal(t, "Villeneuve", updated.Director)
	require.Equal(t, "https://example.com/dune.jpg", updated.PosterURL)
}

func TestUpdateMovieTitleCollision(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	_, err = svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)
	other, err := svc.AddMovie(ctx, alice.ID, "Arrival", "Villeneuve", 2016, "")
	require.NoError(t, err)

	title := "Dune"
	_, err = svc.UpdateMovie(ctx, other.ID, models.MovieUpdate{Title: &title})
	require.ErrorIs(t, err, library.ErrConflict)

	// The rejected update must leave the original row unchanged.
	unchanged, err := svc.GetMovie(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, "Arrival", unchanged.Title)
	require.Equal(t, "Villeneuve", unchanged.Director)
	require.Equal(t, 2016, unchanged.Year)
}

func TestUpdateMovieValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	movie, err := svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)

	empty := "  "
	_, err = svc.UpdateMovie(ctx, movie.ID, models.MovieUpdate{Title: &empty})
	require.ErrorIs(t, err, library.ErrInvalid)

	title := "Arrival"
	_, err = svc.UpdateMovie(ctx, "no-such-movie", models.MovieUpdate{Title: &title})
	require.ErrorIs(t, err, library.ErrNotFound)
}

func TestDeleteMovie(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	movie, err := svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovie(ctx, movie.ID))
	require.ErrorIs(t, svc.DeleteMovie(ctx, movie.ID), library.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	movie, err := svc.AddMovie(ctx, alice.ID, "Dune", "", 0, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, alice.ID))

	_, err = svc.ListMovies(ctx, alice.ID)
	require.ErrorIs(t, err, library.ErrNotFound)

	// No orphaned movies may survive the owner.
	_, err = svc.GetMovie(ctx, movie.ID)
	require.ErrorIs(t, err, library.ErrNotFound)
}

func TestDeleteUserUnknown(t *testing.T) {
	svc := newTestService(t)

	err := svc.DeleteUser(context.Background(), "no-such-user")
	require.ErrorIs(t, err, library.ErrNotFound)
}
