package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// RatingServiceName is the fully-qualified name of the RatingService.
const RatingServiceName = PackageName + ".RatingService"

const (
	RatingServiceStartRatingProcedure = "/" + RatingServiceName + "/StartRating"
	RatingServiceSwipeProcedure       = "/" + RatingServiceName + "/Swipe"
	RatingServiceListRatingsProcedure = "/" + RatingServiceName + "/ListRatings"
)

// RatingServiceHandler runs swipe rating sessions.
type RatingServiceHandler interface {
	StartRating(context.Context, *connect.Request[StartRatingRequest]) (*connect.Response[StartRatingResponse], error)
	Swipe(context.Context, *connect.Request[SwipeRequest]) (*connect.Response[SwipeResponse], error)
	ListRatings(context.Context, *connect.Request[ListRatingsRequest]) (*connect.Response[ListRatingsResponse], error)
}

// NewRatingServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewRatingServiceHandler(svc RatingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	startRatingHandler := connect.NewUnaryHandler(RatingServiceStartRatingProcedure, svc.StartRating, opts...)
	swipeHandler := connect.NewUnaryHandler(RatingServiceSwipeProcedure, svc.Swipe, opts...)
	listRatingsHandler := connect.NewUnaryHandler(RatingServiceListRatingsProcedure, svc.ListRatings, opts...)
	return "/" + RatingServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RatingServiceStartRatingProcedure:
			startRatingHandler.ServeHTTP(w, r)
		case RatingServiceSwipeProcedure:
			swipeHandler.ServeHTTP(w, r)
		case RatingServiceListRatingsProcedure:
			listRatingsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// RatingServiceClient is a client for the RatingService.
type RatingServiceClient interface {
	StartRating(context.Context, *connect.Request[StartRatingRequest]) (*connect.Response[StartRatingResponse], error)
	Swipe(context.Context, *connect.Request[SwipeRequest]) (*connect.Response[SwipeResponse], error)
	ListRatings(context.Context, *connect.Request[ListRatingsRequest]) (*connect.Response[ListRatingsResponse], error)
}

// NewRatingServiceClient constructs a client for the RatingService at baseURL.
func NewRatingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RatingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &ratingServiceClient{
		startRating: connect.NewClient[StartRatingRequest, StartRatingResponse](httpClient, baseURL+RatingServiceStartRatingProcedure, opts...),
		swipe:       connect.NewClient[SwipeRequest, SwipeResponse](httpClient, baseURL+RatingServiceSwipeProcedure, opts...),
		listRatings: connect.NewClient[ListRatingsRequest, ListRatingsResponse](httpClient, baseURL+RatingServiceListRatingsProcedure, opts...),
	}
}

type ratingServiceClient struct {
	startRating *connect.Client[StartRatingRequest, StartRatingResponse]
	swipe       *connect.Client[SwipeRequest, SwipeResponse]
	listRatings *connect.Client[ListRatingsRequest, ListRatingsResponse]
}

func (c *ratingServiceClient) StartRating(ctx context.Context, req *connect.Request[StartRatingRequest]) (*connect.Response[StartRatingResponse], error) {
	return c.startRating.CallUnary(ctx, req)
}

func (c *ratingServiceClient) Swipe(ctx context.Context, req *connect.Request[SwipeRequest]) (*connect.Response[SwipeResponse], error) {
	return c.swipe.CallUnary(ctx, req)
}

func (c *ratingServiceClient) ListRatings(ctx context.Context, req *connect.Request[ListRatingsRequest]) (*connect.Response[ListRatingsResponse], error) {
	return c.listRatings.CallUnary(ctx, req)
}
