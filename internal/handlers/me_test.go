package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
	"github.com/stretchr/testify/assert"
)

func authedRequest(method, target string, body *bytes.Buffer, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middlewares.ContextWithUserID(req.Context(), userID))
}

func TestGetProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name         string
		authed       bool
		mockSetup    func(m *MockProfileReader)
		expectedCode int
	}{
		{
			name:   "success",
			authed: true,
			mockSetup: func(m *MockProfileReader) {
				m.EXPECT().GetProfile(gomock.Any(), userID).
					Return(&models.UserDB{UserID: userID, Username: "john", Email: "john@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "no identity in context",
			authed:       false,
			mockSetup:    func(m *MockProfileReader) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:   "not found",
			authed: true,
			mockSetup: func(m *MockProfileReader) {
				m.EXPECT().GetProfile(gomock.Any(), userID).
					Return(nil, services.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:   "internal error",
			authed: true,
			mockSetup: func(m *MockProfileReader) {
				m.EXPECT().GetProfile(gomock.Any(), userID).
					Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockProfileReader(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewGetProfileHandler(mockSvc)

			var req *http.Request
			if tt.authed {
				req = authedRequest(http.MethodGet, "/me", nil, userID)
			} else {
				req = httptest.NewRequest(http.MethodGet, "/me", nil)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	username := "johnny"

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockProfileUpdater)
		expectedCode int
	}{
		{
			name: "success",
			body: `{"username":"johnny"}`,
			mockSetup: func(m *MockProfileUpdater) {
				m.EXPECT().UpdateProfile(gomock.Any(), userID, &username, gomock.Nil()).
					Return(&models.UserDB{UserID: userID, Username: username, Email: "john@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid body",
			body:         `{invalid`,
			mockSetup:    func(m *MockProfileUpdater) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "not found",
			body: `{"username":"johnny"}`,
			mockSetup: func(m *MockProfileUpdater) {
				m.EXPECT().UpdateProfile(gomock.Any(), userID, &username, gomock.Nil()).
					Return(nil, services.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockProfileUpdater(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewUpdateProfileHandler(mockSvc)

			req := authedRequest(http.MethodPatch, "/me", bytes.NewBufferString(tt.body), userID)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
