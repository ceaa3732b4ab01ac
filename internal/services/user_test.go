package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestUserService_GetProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserReader(ctrl)
	writer := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(reader, writer)

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		reader.EXPECT().GetByID(gomock.Any(), userID).
			Return(&models.UserDB{UserID: userID, Username: "alice", Email: "alice@example.com"}, nil)

		user, err := svc.GetProfile(context.Background(), userID)
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("not found", func(t *testing.T) {
		reader.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil)

		user, err := svc.GetProfile(context.Background(), userID)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("reader error", func(t *testing.T) {
		reader.EXPECT().GetByID(gomock.Any(), userID).Return(nil, errors.New("db error"))

		user, err := svc.GetProfile(context.Background(), userID)
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserReader(ctrl)
	writer := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(reader, writer)

	t.Run("success", func(t *testing.T) {
		reader.EXPECT().FindAll(gomock.Any()).
			Return([]models.UserDB{
				{UserID: uuid.New(), Username: "alice"},
				{UserID: uuid.New(), Username: "bob"},
			}, nil)

		users, err := svc.ListUsers(context.Background())
		assert.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("reader error", func(t *testing.T) {
		reader.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db error"))

		users, err := svc.ListUsers(context.Background())
		assert.Error(t, err)
		assert.Nil(t, users)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserReader(ctrl)
	writer := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(reader, writer)

	userID := uuid.New()
	username := "bob"

	t.Run("success", func(t *testing.T) {
		writer.EXPECT().Update(gomock.Any(), userID, &username, gomock.Nil()).
			Return(&models.UserDB{UserID: userID, Username: username, Email: "bob@example.com"}, nil)

		user, err := svc.UpdateProfile(context.Background(), userID, &username, nil)
		assert.NoError(t, err)
		assert.Equal(t, username, user.Username)
	})

	t.Run("not found", func(t *testing.T) {
		writer.EXPECT().Update(gomock.Any(), userID, &username, gomock.Nil()).Return(nil, nil)

		user, err := svc.UpdateProfile(context.Background(), userID, &username, nil)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, user)
	})
}
