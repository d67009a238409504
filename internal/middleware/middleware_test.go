package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billreminder/internal/api"
	"github.com/mmynk/billreminder/internal/auth"
)

// whoAmI echoes the caller identity back through the recipient list.
type whoAmI struct{}

func (whoAmI) GetSettings(ctx context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	return connect.NewResponse(&api.GetSettingsResponse{
		Settings: &api.Settings{EmailRecipients: []string{GetUserID(ctx), GetEmail(ctx)}},
	}), nil
}

func (whoAmI) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("read only"))
}

func (whoAmI) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("read only"))
}

func setupAuthServer(t *testing.T, jwtManager *auth.JWTManager) *api.SettingsServiceClient {
	t.Helper()

	path, handler := api.NewSettingsServiceHandler(whoAmI{}, connect.WithInterceptors(
		RequireAuth(jwtManager),
		LoggingInterceptor(),
	))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewSettingsServiceClient(http.DefaultClient, server.URL)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client := setupAuthServer(t, jwtManager)

	token, err := jwtManager.Generate("user-42", "u42@x.com")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	req := connect.NewRequest(&api.GetSettingsRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	resp, err := client.GetSettings(context.Background(), req)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	got := resp.Msg.Settings.EmailRecipients
	if got[0] != "user-42" || got[1] != "u42@x.com" {
		t.Errorf("Expected user-42/u42@x.com in context, got %v", got)
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	client := setupAuthServer(t, auth.NewJWTManager("test-secret", time.Hour))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"bad token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetSettingsRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := client.GetSettings(context.Background(), req)
			if connect.CodeOf(err) != connect.CodeUnauthenticated {
				t.Errorf("Expected Unauthenticated, got %v", err)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want slog.Level
	}{
		{"ok", nil, slog.LevelInfo},
		{"invalid argument", connect.NewError(connect.CodeInvalidArgument, errors.New("bad")), slog.LevelWarn},
		{"not found", connect.NewError(connect.CodeNotFound, errors.New("missing")), slog.LevelWarn},
		{"internal", connect.NewError(connect.CodeInternal, errors.New("db down")), slog.LevelError},
		{"plain error", errors.New("boom"), slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levelFor(tt.err); got != tt.want {
				t.Errorf("levelFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/billreminder.v1.BillService/ListBills", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if called {
		t.Error("Expected preflight not to reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers")
	}
}

func TestLogging_RecordsStatus(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status passed through, got %d", rec.Code)
	}
}
