package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"moviweb/models"
)

// Service provides CRUD access to users and movies on top of SQLite. The
// per-user title uniqueness is enforced by the uq_user_movie_title index, so
// concurrent duplicate adds resolve in the engine: exactly one insert wins.
type Service struct {
	db *sql.DB
}

// NewService creates a library service backed by the given connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateUser persists a new user with a fresh identifier.
func (s *Service) CreateUser(ctx context.Context, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("user name cannot be empty: %w", ErrInvalid)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// ListUsers returns all users ordered by name ascending.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// GetUser returns a single user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM users WHERE id = ?`, userID).
		Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user together with every movie they own. The movie
// delete is issued explicitly inside the same transaction rather than
// trusting the engine's cascade alone.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user movies: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

// ListMovies returns every movie owned by the user, ordered by title
// ascending. A user with no movies yields an empty slice, an unknown user
// yields ErrNotFound.
func (s *Service) ListMovies(ctx context.Context, userID string) ([]models.Movie, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, director, year, poster_url, created_at, updated_at
		 FROM movies WHERE user_id = ? ORDER BY title ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Director, &m.Year,
			&m.PosterURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	return movies, nil
}

// GetMovie returns a single movie by id.
func (s *Service) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	var m models.Movie
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, director, year, poster_url, created_at, updated_at
		 FROM movies WHERE id = ?`, movieID).
		Scan(&m.ID, &m.UserID, &m.Title, &m.Director, &m.Year,
			&m.PosterURL, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query movie: %w", err)
	}
	return &m, nil
}

// AddMovie persists a new movie for the user. The insert is a single atomic
// statement: the unique index reports duplicates as ErrConflict and the
// foreign key reports an unknown user as ErrNotFound.
func (s *Service) AddMovie(ctx context.Context, userID, title, director string, year int, posterURL string) (*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("movie title cannot be empty: %w", ErrInvalid)
	}

	now := time.Now().UTC()
	movie := &models.Movie{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Director:  director,
		Year:      year,
		PosterURL: posterURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movies (id, user_id, title, director, year, poster_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.ID, movie.UserID, movie.Title, movie.Director, movie.Year,
		movie.PosterURL, movie.CreatedAt, movie.UpdatedAt)
	if err != nil {
		if constraint, ok := constraintError(err); ok {
			switch constraint {
			case sqlite3.ErrConstraintUnique:
				return nil, fmt.Errorf("user already has a movie titled %q: %w", title, ErrConflict)
			case sqlite3.ErrConstraintForeignKey:
				return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
			}
		}
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	return movie, nil
}

// UpdateMovie applies a partial update: nil fields in upd are left untouched.
// A title change that collides with another movie of the same user fails with
// ErrConflict and leaves the row unchanged.
func (s *Service) UpdateMovie(ctx context.Context, movieID string, upd models.MovieUpdate) (*models.Movie, error) {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("movie title cannot be empty: %w", ErrInvalid)
		}
		set = append(set, "title = ?")
		args = append(args, title)
	}
	if upd.Director != nil {
		set = append(set, "director = ?")
		args = append(args, *upd.Director)
	}
	if upd.Year != nil {
		set = append(set, "year = ?")
		args = append(args, *upd.Year)
	}
	if upd.PosterURL != nil {
		set = append(set, "poster_url = ?")
		args = append(args, *upd.PosterURL)
	}

	args = append(args, movieID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE movies SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if constraint, ok := constraintError(err); ok && constraint == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("user already has a movie with that title: %w", ErrConflict)
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update movie result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}

	return s.GetMovie(ctx, movieID)
}

// DeleteMovie removes a single movie by id.
func (s *Service) DeleteMovie(ctx context.Context, movieID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, movieID)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete movie result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}
	return nil
}

// constraintError unwraps a sqlite constraint violation, reporting which
// constraint fired.
func constraintError(err error) (sqlite3.ErrNoExtended, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return sqliteErr.ExtendedCode, true
	}
	return 0, false
}
