package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/madaure/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockActivityService struct {
	err    error
	userID int
	filter *int
	limit  int
}

func (m *mockActivityService) ListMine(ctx context.Context, userID, limit int) ([]models.Activity, error) {
	m.userID, m.limit = userID, limit
	return []models.Activity{}, m.err
}

func (m *mockActivityService) ListAll(ctx context.Context, userID *int, limit int) ([]models.Activity, error) {
	m.filter, m.limit = userID, limit
	return []models.Activity{}, m.err
}

func TestActivityHandler_ListMine(t *testing.T) {
	svc := &mockActivityService{}
	router := newTestRouter(NewActivityHandler(svc, testLogger()))

	rec := serve(t, router, http.MethodGet, "/activities/mine?limit=20", studentToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.userID)
	assert.Equal(t, 20, svc.limit)
}

func TestActivityHandler_ListAll(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		token          string
		expectedStatus int
		expectedUser   *int
	}{
		{name: "all users", target: "/admin/activities", token: adminToken, expectedStatus: http.StatusOK},
		{name: "one user", target: "/admin/activities?userId=7", token: adminToken, expectedStatus: http.StatusOK, expectedUser: intPtr(7)},
		{name: "malformed user", target: "/admin/activities?userId=x", token: adminToken, expectedStatus: http.StatusBadRequest},
		{name: "student", target: "/admin/activities", token: studentToken, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockActivityService{}
			router := newTestRouter(NewActivityHandler(svc, testLogger()))

			rec := serve(t, router, http.MethodGet, tt.target, tt.token, nil)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUser, svc.filter)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}
