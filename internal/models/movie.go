package models

// Genre is a TMDb genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the metadata record for one movie, keyed by its TMDb id.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	Runtime     int     `json:"runtime,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`

	// Raw is the upstream document as received.
	Raw []byte `json:"-"`
}
