package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSignupHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockSignuper)
		expectedCode int
	}{
		{
			name: "success",
			body: `{"username":"john","email":"john@example.com","password":"secret","repeat_password":"secret"}`,
			mockSetup: func(m *MockSignuper) {
				m.EXPECT().Register(gomock.Any(), "john", "john@example.com", "secret", "secret").
					Return(&models.UserDB{UserID: userID, Username: "john", Email: "john@example.com", PasswordHash: "$2a$12$hash"}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "invalid body",
			body:         `{invalid`,
			mockSetup:    func(m *MockSignuper) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "passwords do not match",
			body: `{"username":"john","email":"john@example.com","password":"secret","repeat_password":"other"}`,
			mockSetup: func(m *MockSignuper) {
				m.EXPECT().Register(gomock.Any(), "john", "john@example.com", "secret", "other").
					Return(nil, services.ErrPasswordMismatch)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: `{"username":"john","email":"john@example.com","password":"secret","repeat_password":"secret"}`,
			mockSetup: func(m *MockSignuper) {
				m.EXPECT().Register(gomock.Any(), "john", "john@example.com", "secret", "secret").
					Return(nil, services.ErrUserAlreadyExists)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: `{"username":"john","email":"john@example.com","password":"secret","repeat_password":"secret"}`,
			mockSetup: func(m *MockSignuper) {
				m.EXPECT().Register(gomock.Any(), "john", "john@example.com", "secret", "secret").
					Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockSignuper(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewSignupHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusCreated {
				var resp map[string]any
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "john", resp["username"])
				// The hash must never leak into the response
				_, hasHash := resp["password_hash"]
				assert.False(t, hasHash)
			}
		})
	}
}
