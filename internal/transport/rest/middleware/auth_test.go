package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"formalyze/internal/model"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*model.UserClaims, error) {
	if token == "good" {
		return &model.UserClaims{UserID: "u1", Email: "a@example.com"}, nil
	}
	return nil, errors.New("bad token")
}

func TestRequireUser(t *testing.T) {
	var seenID, seenEmail string
	h := NewAuthMiddleware(stubValidator{}).RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetUserID(r.Context())
		seenEmail = GetUserEmail(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("Should inject the user for a valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer good")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "u1", seenID)
		assert.Equal(t, "a@example.com", seenEmail)
	})

	t.Run("Should reject missing, malformed and invalid tokens", func(t *testing.T) {
		for _, header := range []string{"", "good", "Basic good", "Bearer bad"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
			assert.Contains(t, rec.Body.String(), `"error"`)
		}
	})

	t.Run("Should return empty values without a user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, GetUserID(req.Context()))
		assert.Equal(t, "u2", GetUserID(WithUserID(req.Context(), "u2")))
	})
}
