package models

// Outcome is the persisted result of one swipe.
type Outcome string

const (
	OutcomeLiked    Outcome = "liked"
	OutcomeDisliked Outcome = "disliked"
	OutcomeSkipped  Outcome = "skipped"
)

// Rating is a user's latest outcome for a movie.
type Rating struct {
	UserID  string
	MovieID int64
	Outcome Outcome
	RatedAt int64
}
