package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/groups"
	"github.com/mmynk/watchtogether/internal/middleware"
	"github.com/mmynk/watchtogether/internal/moviecache"
	"github.com/mmynk/watchtogether/internal/storage"
	"github.com/mmynk/watchtogether/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	groups  *groups.Manager
	ratings storage.RatingStore
	movies  *moviecache.Cache
}

// NewGroupService creates a GroupService. movies may be nil, in which case
// GroupMatches never resolves movie details.
func NewGroupService(manager *groups.Manager, ratings storage.RatingStore, movies *moviecache.Cache) *GroupService {
	return &GroupService{groups: manager, ratings: ratings, movies: movies}
}

// CreateGroup creates a group owned by the caller and returns its join code.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	group, err := s.groups.CreateGroup(ctx, userID, req.Msg.Name, iconFromAPI(req.Msg.Icon))
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// JoinGroup adds the caller to the group that owns the given code.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	slog.Info("JoinGroup request received", "code", req.Msg.Code, "user_id", userID)

	group, err := s.groups.JoinGroup(ctx, userID, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.JoinGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	group, err := s.groups.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListMyGroups retrieves all groups the caller belongs to.
func (s *GroupService) ListMyGroups(ctx context.Context, req *connect.Request[api.ListMyGroupsRequest]) (*connect.Response[api.ListMyGroupsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	list, err := s.groups.ListGroups(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(list))
	for i, g := range list {
		out[i] = groupToAPI(g)
	}
	slog.Info("ListMyGroups successful", "user_id", userID, "count", len(out))

	return connect.NewResponse(&api.ListMyGroupsResponse{Groups: out}), nil
}

// GroupMatches lists the movies every member of the group has liked.
func (s *GroupService) GroupMatches(ctx context.Context, req *connect.Request[api.GroupMatchesRequest]) (*connect.Response[api.GroupMatchesResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	// Membership check; non-members see NotFound.
	group, err := s.groups.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	ids, err := s.ratings.ListGroupMatches(ctx, group.ID)
	if err != nil {
		slog.Error("GroupMatches failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(apperr.Wrap(apperr.KindRemoteRead, err, "could not load matches"))
	}

	resp := &api.GroupMatchesResponse{MovieIDs: ids}
	if req.Msg.IncludeMovies && s.movies != nil {
		for _, id := range ids {
			movie, err := s.movies.Get(ctx, id)
			if err != nil {
				// A match without details is still a match.
				slog.Warn("GroupMatches movie lookup failed", "movie_id", id, "error", err)
				continue
			}
			resp.Movies = append(resp.Movies, movieToAPI(movie))
		}
	}

	slog.Info("GroupMatches successful", "group_id", group.ID, "matches", len(ids))
	return connect.NewResponse(resp), nil
}
