package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/moviecache"
	"github.com/mmynk/watchtogether/pkg/api"
)

// MovieService serves movie metadata through the read-through cache.
type MovieService struct {
	movies *moviecache.Cache
}

// NewMovieService creates a MovieService.
func NewMovieService(movies *moviecache.Cache) *MovieService {
	return &MovieService{movies: movies}
}

// GetMovie returns the metadata for one movie.
func (s *MovieService) GetMovie(ctx context.Context, req *connect.Request[api.GetMovieRequest]) (*connect.Response[api.GetMovieResponse], error) {
	if req.Msg.MovieID <= 0 {
		return nil, toConnectError(apperr.New(apperr.KindValidation, "movie id must be positive"))
	}

	movie, err := s.movies.Get(ctx, req.Msg.MovieID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetMovieResponse{Movie: movieToAPI(movie)}), nil
}
