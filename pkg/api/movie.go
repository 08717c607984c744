package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// MovieServiceName is the fully-qualified name of the MovieService.
const MovieServiceName = PackageName + ".MovieService"

const (
	MovieServiceGetMovieProcedure = "/" + MovieServiceName + "/GetMovie"
)

// MovieServiceHandler serves movie metadata.
type MovieServiceHandler interface {
	GetMovie(context.Context, *connect.Request[GetMovieRequest]) (*connect.Response[GetMovieResponse], error)
}

// NewMovieServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewMovieServiceHandler(svc MovieServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	getMovieHandler := connect.NewUnaryHandler(MovieServiceGetMovieProcedure, svc.GetMovie, opts...)
	return "/" + MovieServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case MovieServiceGetMovieProcedure:
			getMovieHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// MovieServiceClient is a client for the MovieService.
type MovieServiceClient interface {
	GetMovie(context.Context, *connect.Request[GetMovieRequest]) (*connect.Response[GetMovieResponse], error)
}

// NewMovieServiceClient constructs a client for the MovieService at baseURL.
func NewMovieServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) MovieServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &movieServiceClient{
		getMovie: connect.NewClient[GetMovieRequest, GetMovieResponse](httpClient, baseURL+MovieServiceGetMovieProcedure, opts...),
	}
}

type movieServiceClient struct {
	getMovie *connect.Client[GetMovieRequest, GetMovieResponse]
}

func (c *movieServiceClient) GetMovie(ctx context.Context, req *connect.Request[GetMovieRequest]) (*connect.Response[GetMovieResponse], error) {
	return c.getMovie.CallUnary(ctx, req)
}
