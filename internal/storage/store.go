// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/watchtogether/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	// (duplicate join code, duplicate membership edge, duplicate email).
	ErrConflict = errors.New("conflict")
)

// Store defines the interface for all persistence used by the service.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	RatingStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// SetUserGenres replaces the user's onboarding genre picks.
	SetUserGenres(ctx context.Context, userID string, genres []int) error
}

// GroupStore persists groups and the membership edge between users and groups.
type GroupStore interface {
	// CreateGroup persists a new group together with its creator's membership
	// edge in a single transaction. group.ID and group.CreatedAt are populated
	// by the store. Returns ErrConflict if group.JoinCode is already in use.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members. Returns ErrNotFound if the
	// group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// JoinCodeExists reports whether any group currently uses code.
	JoinCodeExists(ctx context.Context, code string) (bool, error)

	// ListGroupsByUser returns every group userID belongs to, oldest first.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// RunInTx runs fn inside one transaction, isolated from concurrent
	// transactions. The transaction commits if fn returns nil and rolls back
	// otherwise; fn's error is returned unchanged.
	RunInTx(ctx context.Context, fn func(tx GroupTx) error) error
}

// GroupTx is the view of the group tables available inside RunInTx.
type GroupTx interface {
	// GetGroupByJoinCode reads the group and its current members.
	// Returns ErrNotFound if no group uses code.
	GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error)

	// AddMember inserts the membership edge. Returns ErrConflict if the edge
	// already exists.
	AddMember(ctx context.Context, groupID, userID string) error
}

// RatingStore persists swipe outcomes.
type RatingStore interface {
	// SaveRating upserts the user's outcome for a movie. rating.RatedAt is
	// populated by the store when zero.
	SaveRating(ctx context.Context, rating *models.Rating) error

	// ListRatings returns the user's ratings, most recent first.
	ListRatings(ctx context.Context, userID string) ([]models.Rating, error)

	// ListGroupMatches returns the ids of movies liked by every member of the
	// group, ordered by movie id.
	ListGroupMatches(ctx context.Context, groupID string) ([]int64, error)
}
