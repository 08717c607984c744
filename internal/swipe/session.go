package swipe

import "fmt"

// Status is where a session stands after its latest commit.
type Status int

const (
	InProgress Status = iota
	// Completed means the target number of non-skip decisions was reached.
	Completed
	// Exhausted means no candidates remain and the target was not reached.
	// Refill makes the session InProgress again.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Exhausted:
		return "exhausted"
	default:
		return "in_progress"
	}
}

// DefaultTarget is the number of non-skip decisions a session asks for when
// none is configured.
const DefaultTarget = 10

// Entry is one committed decision.
type Entry struct {
	MovieID  int64
	Decision Decision
}

// State is a snapshot of a session.
type State struct {
	Status       Status
	CurrentIndex int
	RatedCount   int
	Target       int
	// CurrentMovieID is the candidate awaiting a decision, or 0 if none.
	CurrentMovieID int64
}

// Session is one pass through the rating flow. It is not safe for concurrent
// use.
type Session struct {
	candidates   []int64
	pool         map[int64]struct{}
	currentIndex int
	decisions    []Entry
	ratedCount   int
	target       int
}

// NewSession starts a session over candidates that completes after target
// non-skip decisions. A target below 1 uses DefaultTarget.
func NewSession(target int, candidates ...int64) *Session {
	if target < 1 {
		target = DefaultTarget
	}
	s := &Session{
		pool:   make(map[int64]struct{}, len(candidates)),
		target: target,
	}
	s.Refill(candidates...)
	return s
}

// Current returns the candidate awaiting a decision. ok is false when the
// session is completed or out of candidates.
func (s *Session) Current() (movieID int64, ok bool) {
	if s.ratedCount >= s.target || s.currentIndex >= len(s.candidates) {
		return 0, false
	}
	return s.candidates[s.currentIndex], true
}

// Commit records decision for movieID and advances to the next candidate.
// Skips do not count toward the target.
//
// movieID must be the current candidate and decision must not be None;
// anything else is a caller bug and panics.
func (s *Session) Commit(decision Decision, movieID int64) State {
	current, ok := s.Current()
	if !ok {
		panic(fmt.Sprintf("swipe: commit on finished session (status %s)", s.Status()))
	}
	if movieID != current {
		panic(fmt.Sprintf("swipe: commit for movie %d, current candidate is %d", movieID, current))
	}
	if decision == None {
		panic("swipe: commit of None decision")
	}

	s.decisions = append(s.decisions, Entry{MovieID: movieID, Decision: decision})
	if decision != Skipped {
		s.ratedCount++
	}
	s.currentIndex++

	return s.State()
}

// Refill appends candidates to the pool.
func (s *Session) Refill(movieIDs ...int64) {
	s.candidates = append(s.candidates, movieIDs...)
	for _, id := range movieIDs {
		s.pool[id] = struct{}{}
	}
}

// Status reports the session status. Completed takes precedence over
// Exhausted.
func (s *Session) Status() Status {
	switch {
	case s.ratedCount >= s.target:
		return Completed
	case s.currentIndex >= len(s.candidates):
		return Exhausted
	default:
		return InProgress
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	current, _ := s.Current()
	return State{
		Status:         s.Status(),
		CurrentIndex:   s.currentIndex,
		RatedCount:     s.ratedCount,
		Target:         s.target,
		CurrentMovieID: current,
	}
}

// Decisions returns a copy of the committed decisions in order.
func (s *Session) Decisions() []Entry {
	return append([]Entry(nil), s.decisions...)
}

// Remaining returns the number of candidates not yet decided.
func (s *Session) Remaining() int {
	return len(s.candidates) - s.currentIndex
}

// Seen reports whether movieID is already in the pool.
func (s *Session) Seen(movieID int64) bool {
	_, ok := s.pool[movieID]
	return ok
}
