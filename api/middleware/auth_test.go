package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/auth"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "craftmarket", ExpirationMinutes: 60}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	for _, header := range []string{"", "Bearer ", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		Auth(testJWT(), nil)(okHandler()).ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.Code)
		}
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	Auth(testJWT(), nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsActor(t *testing.T) {
	cfg := testJWT()
	userID := uuid.New()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: enums.ActorRoleSeller})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var captured types.Actor
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.UserID != userID || captured.Role != enums.ActorRoleSeller {
		t.Fatalf("unexpected actor %+v", captured)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(nil, enums.ActorRoleSeller, enums.ActorRoleAdmin)
	cases := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"buyer", WithActor(context.Background(), types.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}), http.StatusForbidden},
		{"seller", WithActor(context.Background(), types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}), http.StatusOK},
		{"admin", WithActor(context.Background(), types.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tc.ctx)
		resp := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, resp.Code)
		}
	}
}
