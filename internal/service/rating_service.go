package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/metrics"
	"github.com/mmynk/watchtogether/internal/middleware"
	"github.com/mmynk/watchtogether/internal/models"
	"github.com/mmynk/watchtogether/internal/storage"
	"github.com/mmynk/watchtogether/internal/swipe"
	"github.com/mmynk/watchtogether/pkg/api"
)

const (
	// maxTarget bounds the number of ratings one session can ask for.
	maxTarget = 100
	// maxRefillPages is how many candidate pages a refill reads before giving
	// up on finding unseen movies.
	maxRefillPages = 3
	// DefaultSessionIdle is how long an untouched session is kept.
	DefaultSessionIdle = time.Hour
)

// RatingConfig holds the tunables of the rating flow.
type RatingConfig struct {
	Thresholds swipe.Thresholds
	Target     int
	// SessionIdle is how long a session survives without a swipe.
	SessionIdle time.Duration
}

// ratingSession is one user's in-flight swipe.Session. mu guards session and
// the paging state.
type ratingSession struct {
	mu       sync.Mutex
	userID   string
	session  *swipe.Session
	nextPage int
	touched  time.Time
	finished bool
}

// RatingService runs swipe rating sessions and persists each decision.
type RatingService struct {
	ratings    storage.RatingStore
	candidates CandidateSource
	cfg        RatingConfig

	mu       sync.Mutex
	sessions map[string]*ratingSession
	now      func() time.Time
}

// NewRatingService creates a RatingService.
func NewRatingService(ratings storage.RatingStore, candidates CandidateSource, cfg RatingConfig) *RatingService {
	if cfg.Target < 1 {
		cfg.Target = swipe.DefaultTarget
	}
	if cfg.Thresholds == (swipe.Thresholds{}) {
		cfg.Thresholds = swipe.DefaultThresholds()
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = DefaultSessionIdle
	}
	return &RatingService{
		ratings:    ratings,
		candidates: candidates,
		cfg:        cfg,
		sessions:   make(map[string]*ratingSession),
		now:        time.Now,
	}
}

// StartRating opens a session. Without explicit movie ids the pool is the
// first page from the candidate source, minus movies the caller already rated.
func (s *RatingService) StartRating(ctx context.Context, req *connect.Request[api.StartRatingRequest]) (*connect.Response[api.StartRatingResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	target := req.Msg.Target
	if target == 0 {
		target = s.cfg.Target
	}
	if target < 0 || target > maxTarget {
		return nil, toConnectError(apperr.New(apperr.KindValidation, "target must be between 1 and %d", maxTarget))
	}

	rs := &ratingSession{userID: userID, nextPage: 1}
	if len(req.Msg.MovieIDs) > 0 {
		rs.session = swipe.NewSession(target, dedupe(req.Msg.MovieIDs, nil)...)
	} else {
		rated, err := s.ratedSet(ctx, userID)
		if err != nil {
			return nil, toConnectError(err)
		}
		rs.session = swipe.NewSession(target)
		if err := s.refill(ctx, rs, rated); err != nil {
			slog.Error("StartRating candidate fetch failed", "user_id", userID, "error", err)
			return nil, toConnectError(err)
		}
	}

	id := uuid.New().String()
	now := s.now()
	rs.touched = now

	s.mu.Lock()
	s.pruneLocked(now)
	s.sessions[id] = rs
	s.mu.Unlock()

	state := rs.session.State()
	slog.Info("Rating session started",
		"session_id", id,
		"user_id", userID,
		"target", state.Target,
		"candidates", rs.session.Remaining(),
	)

	return connect.NewResponse(&api.StartRatingResponse{
		SessionID: id,
		State:     stateToAPI(state),
	}), nil
}

// Swipe classifies the release offset and, when it crosses a threshold,
// commits the decision for the current movie.
func (s *RatingService) Swipe(ctx context.Context, req *connect.Request[api.SwipeRequest]) (*connect.Response[api.SwipeResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rs, err := s.lookup(userID, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.touched = s.now()

	current, ok := rs.session.Current()
	if !ok {
		return nil, toConnectError(apperr.New(apperr.KindContract, "session is %s", rs.session.Status()))
	}
	if req.Msg.MovieID != current {
		return nil, toConnectError(apperr.New(apperr.KindValidation, "movie %d is not the current card", req.Msg.MovieID))
	}

	decision := s.cfg.Thresholds.Classify(req.Msg.Dx, req.Msg.Dy)
	if decision == swipe.None {
		return connect.NewResponse(&api.SwipeResponse{
			Committed: false,
			Decision:  decision.String(),
			State:     stateToAPI(rs.session.State()),
		}), nil
	}

	// Persist before committing so a failed write leaves the card in place.
	rating := &models.Rating{UserID: userID, MovieID: current, Outcome: decision.Outcome()}
	if err := s.ratings.SaveRating(ctx, rating); err != nil {
		slog.Error("Swipe rating save failed", "user_id", userID, "movie_id", current, "error", err)
		return nil, toConnectError(apperr.Wrap(apperr.KindRemoteWrite, err, "could not save rating"))
	}

	state := rs.session.Commit(decision, current)
	metrics.SwipeDecisions.WithLabelValues(decision.String()).Inc()

	if state.Status == swipe.Exhausted {
		rated, err := s.ratedSet(ctx, userID)
		if err == nil {
			err = s.refill(ctx, rs, rated)
		}
		if err != nil {
			// The session stays exhausted; the client can start a new one.
			slog.Warn("Swipe refill failed", "session_id", req.Msg.SessionID, "error", err)
		}
		state = rs.session.State()
	}

	if state.Status != swipe.InProgress && !rs.finished {
		rs.finished = true
		metrics.RatingSessionsFinished.WithLabelValues(state.Status.String()).Inc()
		slog.Info("Rating session finished",
			"session_id", req.Msg.SessionID,
			"status", state.Status.String(),
			"rated", state.RatedCount,
		)
	}

	return connect.NewResponse(&api.SwipeResponse{
		Committed: true,
		Decision:  decision.String(),
		State:     stateToAPI(state),
	}), nil
}

// ListRatings returns the caller's ratings, most recent first.
func (s *RatingService) ListRatings(ctx context.Context, req *connect.Request[api.ListRatingsRequest]) (*connect.Response[api.ListRatingsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	ratings, err := s.ratings.ListRatings(ctx, userID)
	if err != nil {
		return nil, toConnectError(apperr.Wrap(apperr.KindRemoteRead, err, "could not list ratings"))
	}

	out := make([]*api.Rating, len(ratings))
	for i, r := range ratings {
		out[i] = &api.Rating{MovieID: r.MovieID, Outcome: string(r.Outcome), RatedAt: r.RatedAt}
	}
	return connect.NewResponse(&api.ListRatingsResponse{Ratings: out}), nil
}

func (s *RatingService) lookup(userID, sessionID string) (*ratingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sessions[sessionID]
	// Other users' sessions look missing.
	if !ok || rs.userID != userID {
		return nil, apperr.New(apperr.KindNotFound, "rating session not found")
	}
	return rs, nil
}

// refill appends unseen candidates to rs, reading up to maxRefillPages pages.
// skip holds movie ids to leave out besides those already in the pool.
// Must be called with rs.mu held or before rs is published.
func (s *RatingService) refill(ctx context.Context, rs *ratingSession, skip map[int64]bool) error {
	if s.candidates == nil {
		return nil
	}
	for i := 0; i < maxRefillPages; i++ {
		ids, err := s.candidates.Candidates(ctx, rs.userID, rs.nextPage)
		if err != nil {
			return err
		}
		rs.nextPage++
		if len(ids) == 0 {
			return nil
		}

		fresh := make([]int64, 0, len(ids))
		for _, id := range dedupe(ids, skip) {
			if !rs.session.Seen(id) {
				fresh = append(fresh, id)
			}
		}
		if len(fresh) > 0 {
			rs.session.Refill(fresh...)
			return nil
		}
	}
	return nil
}

func (s *RatingService) ratedSet(ctx context.Context, userID string) (map[int64]bool, error) {
	ratings, err := s.ratings.ListRatings(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemoteRead, err, "could not load ratings")
	}
	rated := make(map[int64]bool, len(ratings))
	for _, r := range ratings {
		rated[r.MovieID] = true
	}
	return rated, nil
}

// pruneLocked drops sessions idle for longer than the configured window.
func (s *RatingService) pruneLocked(now time.Time) {
	for id, rs := range s.sessions {
		if !rs.mu.TryLock() {
			continue
		}
		idle := now.Sub(rs.touched)
		rs.mu.Unlock()
		if idle > s.cfg.SessionIdle {
			delete(s.sessions, id)
		}
	}
}

// dedupe returns ids in order without repeats or entries in skip.
func dedupe(ids []int64, skip map[int64]bool) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] || skip[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

