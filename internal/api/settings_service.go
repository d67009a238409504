package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SettingsServiceName is the fully-qualified name of the settings service.
const SettingsServiceName = "billreminder.v1.SettingsService"

const (
	SettingsServiceGetSettingsProcedure    = "/" + SettingsServiceName + "/GetSettings"
	SettingsServiceUpdateSettingsProcedure = "/" + SettingsServiceName + "/UpdateSettings"
	SettingsServiceDeleteAccountProcedure  = "/" + SettingsServiceName + "/DeleteAccount"
)

// SettingsServiceHandler is implemented by the server side of the settings service.
type SettingsServiceHandler interface {
	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error)
	DeleteAccount(context.Context, *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error)
}

// NewSettingsServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewSettingsServiceHandler(svc SettingsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	return serviceMux(SettingsServiceName, map[string]http.Handler{
		SettingsServiceGetSettingsProcedure:    connect.NewUnaryHandler(SettingsServiceGetSettingsProcedure, svc.GetSettings, opts...),
		SettingsServiceUpdateSettingsProcedure: connect.NewUnaryHandler(SettingsServiceUpdateSettingsProcedure, svc.UpdateSettings, opts...),
		SettingsServiceDeleteAccountProcedure:  connect.NewUnaryHandler(SettingsServiceDeleteAccountProcedure, svc.DeleteAccount, opts...),
	})
}

// SettingsServiceClient calls the settings service.
type SettingsServiceClient struct {
	getSettings    *connect.Client[GetSettingsRequest, GetSettingsResponse]
	updateSettings *connect.Client[UpdateSettingsRequest, UpdateSettingsResponse]
	deleteAccount  *connect.Client[DeleteAccountRequest, DeleteAccountResponse]
}

// NewSettingsServiceClient creates a client for the settings service at baseURL.
func NewSettingsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettingsServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &SettingsServiceClient{
		getSettings:    connect.NewClient[GetSettingsRequest, GetSettingsResponse](httpClient, baseURL+SettingsServiceGetSettingsProcedure, opts...),
		updateSettings: connect.NewClient[UpdateSettingsRequest, UpdateSettingsResponse](httpClient, baseURL+SettingsServiceUpdateSettingsProcedure, opts...),
		deleteAccount:  connect.NewClient[DeleteAccountRequest, DeleteAccountResponse](httpClient, baseURL+SettingsServiceDeleteAccountProcedure, opts...),
	}
}

func (c *SettingsServiceClient) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error) {
	return c.getSettings.CallUnary(ctx, req)
}

func (c *SettingsServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}

func (c *SettingsServiceClient) DeleteAccount(ctx context.Context, req *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error) {
	return c.deleteAccount.CallUnary(ctx, req)
}
