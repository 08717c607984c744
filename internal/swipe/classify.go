// Package swipe turns drag gestures on a movie card into rating decisions and
// tracks a rating session's progress toward its target.
package swipe

import "github.com/mmynk/watchtogether/internal/models"

// Decision is the discrete outcome of a gesture.
type Decision int

const (
	// None means the gesture has not crossed any threshold.
	None Decision = iota
	Liked
	Disliked
	Skipped
)

func (d Decision) String() string {
	switch d {
	case Liked:
		return "liked"
	case Disliked:
		return "disliked"
	case Skipped:
		return "skipped"
	default:
		return "none"
	}
}

// Outcome converts a committed decision to its persisted form.
// It returns "" for None.
func (d Decision) Outcome() models.Outcome {
	switch d {
	case Liked:
		return models.OutcomeLiked
	case Disliked:
		return models.OutcomeDisliked
	case Skipped:
		return models.OutcomeSkipped
	default:
		return ""
	}
}

// Default thresholds, in points of drag distance.
const (
	DefaultSwipeThreshold = 120
	DefaultSkipThreshold  = 60
)

// Thresholds are the drag distances a gesture must exceed to commit.
type Thresholds struct {
	// Swipe is the horizontal distance beyond which left/right commits.
	Swipe float64
	// Skip is the upward distance beyond which skip commits.
	Skip float64
}

// DefaultThresholds returns the thresholds used by the mobile app.
func DefaultThresholds() Thresholds {
	return Thresholds{Swipe: DefaultSwipeThreshold, Skip: DefaultSkipThreshold}
}

// Classify maps a drag offset to a decision. Horizontal movement wins over
// vertical; dy is negative when the card moves up.
func (t Thresholds) Classify(dx, dy float64) Decision {
	switch {
	case dx > t.Swipe:
		return Liked
	case dx < -t.Swipe:
		return Disliked
	case dy < -t.Skip:
		return Skipped
	default:
		return None
	}
}

// Tracker follows one drag gesture. Move reports the live decision for visual
// feedback while the finger is down; Release reports the committed one. Both
// use the same Classify.
type Tracker struct {
	thresholds Thresholds
	released   bool
}

// NewTracker starts tracking a gesture.
func NewTracker(t Thresholds) *Tracker {
	return &Tracker{thresholds: t}
}

// Move returns the decision a movement sample would commit.
func (tr *Tracker) Move(dx, dy float64) Decision {
	return tr.thresholds.Classify(dx, dy)
}

// Release returns the committed decision for the final sample.
// Calling Release again returns None.
func (tr *Tracker) Release(dx, dy float64) Decision {
	if tr.released {
		return None
	}
	tr.released = true
	return tr.thresholds.Classify(dx, dy)
}
