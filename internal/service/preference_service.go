package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/middleware"
	"github.com/mmynk/watchtogether/internal/storage"
	"github.com/mmynk/watchtogether/pkg/api"
)

// maxGenres bounds how many genres a user can pick during onboarding.
const maxGenres = 20

// PreferenceService stores the genres picked during onboarding.
type PreferenceService struct {
	users storage.UserStore
}

// NewPreferenceService creates a PreferenceService.
func NewPreferenceService(users storage.UserStore) *PreferenceService {
	return &PreferenceService{users: users}
}

// SetPreferences replaces the caller's genre picks.
func (s *PreferenceService) SetPreferences(ctx context.Context, req *connect.Request[api.SetPreferencesRequest]) (*connect.Response[api.SetPreferencesResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	genres, err := normalizeGenres(req.Msg.GenreIDs)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.users.SetUserGenres(ctx, userID, genres); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, toConnectError(apperr.New(apperr.KindNotFound, "user not found"))
		}
		slog.Error("SetPreferences failed", "user_id", userID, "error", err)
		return nil, toConnectError(apperr.Wrap(apperr.KindRemoteWrite, err, "could not save preferences"))
	}

	slog.Info("Preferences saved", "user_id", userID, "genres", len(genres))
	return connect.NewResponse(&api.SetPreferencesResponse{GenreIDs: genres}), nil
}

// GetPreferences returns the caller's genre picks.
func (s *PreferenceService) GetPreferences(ctx context.Context, req *connect.Request[api.GetPreferencesRequest]) (*connect.Response[api.GetPreferencesResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(apperr.New(apperr.KindNotFound, "user not found"))
	}
	if err != nil {
		return nil, toConnectError(apperr.Wrap(apperr.KindRemoteRead, err, "could not load preferences"))
	}

	genres := user.Genres
	if genres == nil {
		genres = []int{}
	}
	return connect.NewResponse(&api.GetPreferencesResponse{GenreIDs: genres}), nil
}

// normalizeGenres drops duplicates, keeping first-seen order.
func normalizeGenres(ids []int) ([]int, error) {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, apperr.New(apperr.KindValidation, "genre id %d is not valid", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) > maxGenres {
		return nil, apperr.New(apperr.KindValidation, "pick at most %d genres", maxGenres)
	}
	return out, nil
}
