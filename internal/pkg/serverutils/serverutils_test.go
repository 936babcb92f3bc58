package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0,lte=10"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
	}{
		{name: "valid", req: sampleRequest{Name: "a", Count: 3}},
		{name: "missing name", req: sampleRequest{Count: 3}, wantErr: true},
		{name: "count too high", req: sampleRequest{Name: "a", Count: 11}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		})
	}
}

func signed(t *testing.T, secret string, method jwt.SigningMethod, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{"user_id": "admin", "exp": exp.Unix()})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JwtMiddleware("secret"), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signed(t, "other", jwt.SigningMethodHS256, time.Now().Add(time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signed(t, "secret", jwt.SigningMethodHS256, time.Now().Add(-time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + signed(t, "secret", jwt.SigningMethodHS256, time.Now().Add(time.Hour)), wantStatus: http.StatusOK, wantBody: "admin"},
		{name: "query token", query: "?access_token=" + signed(t, "secret", jwt.SigningMethodHS256, time.Now().Add(time.Hour)), wantStatus: http.StatusOK, wantBody: "admin"},
		{name: "bad query token", query: "?access_token=garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "nope") })
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("boom") })

	for path, want := range map[string]int{"/bad": 400, "/boom": 500} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode)

		var body BaseResponse[any]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, want, body.Code)
	}
}
