package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	studentToken = "student-token"
	teacherToken = "teacher-token"
	adminToken   = "admin-token"
)

// mockTokens accepts one token per role: student 7, teacher 2, admin 1
type mockTokens struct{}

func (mockTokens) ValidateAccessToken(token string) (int, string, error) {
	switch token {
	case studentToken:
		return 7, "student", nil
	case teacherToken:
		return 2, "teacher", nil
	case adminToken:
		return 1, "admin", nil
	}
	return 0, "", errors.New("invalid token")
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router, g Guards)
}

func newTestRouter(h routeRegistrar) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r, NewGuards(mockTokens{}))
	return r
}

// serve performs a request against router; body is JSON-encoded unless it is already a string
//
// headers holds extra header name/value pairs.
func serve(t *testing.T, router http.Handler, method, target, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
