package api

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Icon is either a color (kind "color", value like "#FF8800") or an image
// (kind "image", value is a URL).
type Icon struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Icon      *Icon    `json:"icon"`
	JoinCode  string   `json:"joinCode"`
	CreatedBy string   `json:"createdBy"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	Icon *Icon  `json:"icon"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListMyGroupsRequest struct{}

type ListMyGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GroupMatchesRequest struct {
	GroupID string `json:"groupId"`
	// IncludeMovies resolves each match through the movie cache.
	IncludeMovies bool `json:"includeMovies"`
}

type GroupMatchesResponse struct {
	MovieIDs []int64  `json:"movieIds"`
	Movies   []*Movie `json:"movies,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"posterPath"`
	Genres      []Genre `json:"genres"`
	Runtime     int     `json:"runtime"`
	ReleaseDate string  `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
}

type GetMovieRequest struct {
	MovieID int64 `json:"movieId"`
}

type GetMovieResponse struct {
	Movie *Movie `json:"movie"`
}

// SessionState is a snapshot of a rating session after the last commit.
type SessionState struct {
	Status         string `json:"status"`
	RatedCount     int    `json:"ratedCount"`
	Target         int    `json:"target"`
	CurrentIndex   int    `json:"currentIndex"`
	CurrentMovieID int64  `json:"currentMovieId"`
}

type StartRatingRequest struct {
	// Target defaults to the server's configured value when zero.
	Target int `json:"target"`
	// MovieIDs seeds the pool. When empty the server picks candidates.
	MovieIDs []int64 `json:"movieIds"`
}

type StartRatingResponse struct {
	SessionID string        `json:"sessionId"`
	State     *SessionState `json:"state"`
}

type SwipeRequest struct {
	SessionID string  `json:"sessionId"`
	MovieID   int64   `json:"movieId"`
	Dx        float64 `json:"dx"`
	Dy        float64 `json:"dy"`
}

type SwipeResponse struct {
	Committed bool          `json:"committed"`
	Decision  string        `json:"decision"`
	State     *SessionState `json:"state"`
}

type Rating struct {
	MovieID int64  `json:"movieId"`
	Outcome string `json:"outcome"`
	RatedAt int64  `json:"ratedAt"`
}

type ListRatingsRequest struct{}

type ListRatingsResponse struct {
	Ratings []*Rating `json:"ratings"`
}

type SetPreferencesRequest struct {
	GenreIDs []int `json:"genreIds"`
}

type SetPreferencesResponse struct {
	GenreIDs []int `json:"genreIds"`
}

type GetPreferencesRequest struct{}

type GetPreferencesResponse struct {
	GenreIDs []int `json:"genreIds"`
}
