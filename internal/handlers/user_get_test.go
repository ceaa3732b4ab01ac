package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestGetUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name         string
		target       string
		mockSetup    func(m *MockUserGetter)
		expectedCode int
	}{
		{
			name:   "success",
			target: "/users/" + userID.String(),
			mockSetup: func(m *MockUserGetter) {
				m.EXPECT().GetProfile(gomock.Any(), userID).
					Return(&models.UserDB{UserID: userID, Username: "alice", Email: "alice@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid id",
			target:       "/users/not-a-uuid",
			mockSetup:    func(m *MockUserGetter) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "not found",
			target: "/users/" + userID.String(),
			mockSetup: func(m *MockUserGetter) {
				m.EXPECT().GetProfile(gomock.Any(), userID).
					Return(nil, services.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserGetter(ctrl)
			tt.mockSetup(mockSvc)

			router := chi.NewRouter()
			router.Get("/users/{id}", NewGetUserHandler(mockSvc))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGetUserHandler_NeverSerializesPasswordHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	mockSvc := NewMockUserGetter(ctrl)
	mockSvc.EXPECT().GetProfile(gomock.Any(), userID).
		Return(&models.UserDB{UserID: userID, Username: "alice", PasswordHash: "$2a$12$secret"}, nil)

	router := chi.NewRouter()
	router.Get("/users/{id}", NewGetUserHandler(mockSvc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/"+userID.String(), nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")
}
