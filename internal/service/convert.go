package service

import (
	"github.com/mmynk/watchtogether/internal/models"
	"github.com/mmynk/watchtogether/internal/swipe"
	"github.com/mmynk/watchtogether/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func groupToAPI(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Icon:      &api.Icon{Kind: string(g.Icon.Kind), Value: g.Icon.Value},
		JoinCode:  g.JoinCode,
		CreatedBy: g.CreatedBy,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func iconFromAPI(icon *api.Icon) models.Icon {
	if icon == nil {
		return models.Icon{}
	}
	return models.Icon{Kind: models.IconKind(icon.Kind), Value: icon.Value}
}

func movieToAPI(m *models.Movie) *api.Movie {
	genres := make([]api.Genre, len(m.Genres))
	for i, g := range m.Genres {
		genres[i] = api.Genre{ID: g.ID, Name: g.Name}
	}
	return &api.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		Genres:      genres,
		Runtime:     m.Runtime,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
	}
}

func stateToAPI(s swipe.State) *api.SessionState {
	return &api.SessionState{
		Status:         s.Status.String(),
		RatedCount:     s.RatedCount,
		Target:         s.Target,
		CurrentIndex:   s.CurrentIndex,
		CurrentMovieID: s.CurrentMovieID,
	}
}
