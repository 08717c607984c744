package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/watchtogether/internal/models"
)

// SaveRating upserts the user's latest outcome for a movie.
func (s *SQLiteStore) SaveRating(ctx context.Context, rating *models.Rating) error {
	if rating.RatedAt == 0 {
		rating.RatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (user_id, movie_id, outcome, rated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, movie_id) DO UPDATE SET outcome = excluded.outcome, rated_at = excluded.rated_at`,
		rating.UserID, rating.MovieID, string(rating.Outcome), rating.RatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}

	return nil
}

// ListRatings retrieves a user's ratings, most recent first.
func (s *SQLiteStore) ListRatings(ctx context.Context, userID string) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, movie_id, outcome, rated_at
		 FROM ratings WHERE user_id = ? ORDER BY rated_at DESC, movie_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		var outcome string
		if err := rows.Scan(&r.UserID, &r.MovieID, &outcome, &r.RatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		r.Outcome = models.Outcome(outcome)
		ratings = append(ratings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	return ratings, nil
}

// ListGroupMatches returns movies every member of the group has liked.
func (s *SQLiteStore) ListGroupMatches(ctx context.Context, groupID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.movie_id
		 FROM ratings r
		 JOIN group_members gm ON gm.user_id = r.user_id AND gm.group_id = ?
		 WHERE r.outcome = 'liked'
		 GROUP BY r.movie_id
		 HAVING COUNT(*) = (SELECT COUNT(*) FROM group_members WHERE group_id = ?)
		 ORDER BY r.movie_id`,
		groupID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group matches: %w", err)
	}
	defer rows.Close()

	var movieIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		movieIDs = append(movieIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return movieIDs, nil
}
