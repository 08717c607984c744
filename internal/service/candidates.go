package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/watchtogether/internal/storage"
)

// CandidateSource supplies movie ids for a user's rating pool, one page at a
// time. Pages start at 1.
type CandidateSource interface {
	Candidates(ctx context.Context, userID string, page int) ([]int64, error)
}

// MovieLister is the part of the metadata client used to build pools.
type MovieLister interface {
	Popular(ctx context.Context, page int) ([]int64, error)
	Discover(ctx context.Context, genreIDs []int, page int) ([]int64, error)
}

// GenreCandidates picks movies from the user's onboarding genres, falling back
// to popular movies when the user has not picked any.
type GenreCandidates struct {
	movies MovieLister
	users  storage.UserStore
}

// NewGenreCandidates creates a GenreCandidates source.
func NewGenreCandidates(movies MovieLister, users storage.UserStore) *GenreCandidates {
	return &GenreCandidates{movies: movies, users: users}
}

// Candidates implements CandidateSource.
func (c *GenreCandidates) Candidates(ctx context.Context, userID string, page int) ([]int64, error) {
	user, err := c.users.GetUserByID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user genres: %w", err)
	}
	if user != nil && len(user.Genres) > 0 {
		return c.movies.Discover(ctx, user.Genres, page)
	}
	return c.movies.Popular(ctx, page)
}
