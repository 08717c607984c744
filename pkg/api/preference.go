package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// PreferenceServiceName is the fully-qualified name of the PreferenceService.
const PreferenceServiceName = PackageName + ".PreferenceService"

const (
	PreferenceServiceSetPreferencesProcedure = "/" + PreferenceServiceName + "/SetPreferences"
	PreferenceServiceGetPreferencesProcedure = "/" + PreferenceServiceName + "/GetPreferences"
)

// PreferenceServiceHandler stores the genres picked during onboarding.
type PreferenceServiceHandler interface {
	SetPreferences(context.Context, *connect.Request[SetPreferencesRequest]) (*connect.Response[SetPreferencesResponse], error)
	GetPreferences(context.Context, *connect.Request[GetPreferencesRequest]) (*connect.Response[GetPreferencesResponse], error)
}

// NewPreferenceServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewPreferenceServiceHandler(svc PreferenceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	setPreferencesHandler := connect.NewUnaryHandler(PreferenceServiceSetPreferencesProcedure, svc.SetPreferences, opts...)
	getPreferencesHandler := connect.NewUnaryHandler(PreferenceServiceGetPreferencesProcedure, svc.GetPreferences, opts...)
	return "/" + PreferenceServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PreferenceServiceSetPreferencesProcedure:
			setPreferencesHandler.ServeHTTP(w, r)
		case PreferenceServiceGetPreferencesProcedure:
			getPreferencesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// PreferenceServiceClient is a client for the PreferenceService.
type PreferenceServiceClient interface {
	SetPreferences(context.Context, *connect.Request[SetPreferencesRequest]) (*connect.Response[SetPreferencesResponse], error)
	GetPreferences(context.Context, *connect.Request[GetPreferencesRequest]) (*connect.Response[GetPreferencesResponse], error)
}

// NewPreferenceServiceClient constructs a client for the PreferenceService at baseURL.
func NewPreferenceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PreferenceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &preferenceServiceClient{
		setPreferences: connect.NewClient[SetPreferencesRequest, SetPreferencesResponse](httpClient, baseURL+PreferenceServiceSetPreferencesProcedure, opts...),
		getPreferences: connect.NewClient[GetPreferencesRequest, GetPreferencesResponse](httpClient, baseURL+PreferenceServiceGetPreferencesProcedure, opts...),
	}
}

type preferenceServiceClient struct {
	setPreferences *connect.Client[SetPreferencesRequest, SetPreferencesResponse]
	getPreferences *connect.Client[GetPreferencesRequest, GetPreferencesResponse]
}

func (c *preferenceServiceClient) SetPreferences(ctx context.Context, req *connect.Request[SetPreferencesRequest]) (*connect.Response[SetPreferencesResponse], error) {
	return c.setPreferences.CallUnary(ctx, req)
}

func (c *preferenceServiceClient) GetPreferences(ctx context.Context, req *connect.Request[GetPreferencesRequest]) (*connect.Response[GetPreferencesResponse], error) {
	return c.getPreferences.CallUnary(ctx, req)
}
