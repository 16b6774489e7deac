package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "learnpath/internal/errors"
	"learnpath/internal/model"
)

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name          string
		actorRole     model.Role
		input         CreateUserInput
		setupMock     func(*MockUserRepository)
		expectedRole  model.Role
		expectedError error
	}{
		{
			name:      "standard user by default",
			actorRole: model.RoleStandard,
			input:     CreateUserInput{Email: "New@Example.com", Name: " New ", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleStandard,
		},
		{
			name:      "admin creates admin",
			actorRole: model.RoleAdmin,
			input:     CreateUserInput{Email: "boss@example.com", Name: "Boss", Password: "password123", Role: model.RoleAdmin},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "boss@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleAdmin,
		},
		{
			name:          "standard user cannot create admin",
			actorRole:     model.RoleStandard,
			input:         CreateUserInput{Email: "boss@example.com", Password: "password123", Role: model.RoleAdmin},
			setupMock:     func(*MockUserRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "unknown role",
			actorRole:     model.RoleAdmin,
			input:         CreateUserInput{Email: "x@example.com", Password: "password123", Role: "owner"},
			setupMock:     func(*MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRole,
		},
		{
			name:      "email already registered",
			actorRole: model.RoleAdmin,
			input:     CreateUserInput{Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, nil)
			user, err := service.CreateUser(context.Background(), tt.actorRole, tt.input)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, user.Role)
				assert.Equal(t, user.Email, strings.ToLower(strings.TrimSpace(tt.input.Email)))
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetUser(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "a@example.com"}, nil)
	mockRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	service := NewUserService(mockRepo, nil)

	user, err := service.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = service.GetUser(context.Background(), uuid.New())
	assert.Equal(t, apperrors.ErrUserNotFound, err)
}

func TestUserService_UpdateUser(t *testing.T) {
	id := uuid.New()

	t.Run("promotes to admin", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Name: "Old", Role: model.RoleStandard}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleAdmin && u.Name == "Old"
		})).Return(nil)

		role := model.RoleAdmin
		user, err := NewUserService(mockRepo, nil).UpdateUser(context.Background(), id, UpdateUserInput{Role: &role})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Role: model.RoleStandard}, nil)

		role := model.Role("root")
		_, err := NewUserService(mockRepo, nil).UpdateUser(context.Background(), id, UpdateUserInput{Role: &role})
		assert.Equal(t, apperrors.ErrInvalidRole, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	actor := uuid.New()
	target := uuid.New()

	tests := []struct {
		name          string
		id            uuid.UUID
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "deletes another user",
			id:   target,
			setupMock: func(m *MockUserRepository) {
				m.On("Delete", mock.Anything, target).Return(nil)
			},
		},
		{
			name:          "cannot delete self",
			id:            actor,
			setupMock:     func(*MockUserRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name: "missing user",
			id:   target,
			setupMock: func(m *MockUserRepository) {
				m.On("Delete", mock.Anything, target).Return(gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			err := NewUserService(mockRepo, nil).DeleteUser(context.Background(), actor, tt.id)
			assert.Equal(t, tt.expectedError, err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_SetPassword(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "a@example.com"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	mockRepo.On("FindByEmail", mock.Anything, "b@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("UpdatePassword", mock.Anything, user.ID, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")) == nil
	})).Return(nil)

	service := NewUserService(mockRepo, nil)
	require.NoError(t, service.SetPassword(context.Background(), "A@example.com", "s3cret!"))
	assert.Equal(t, apperrors.ErrUserNotFound, service.SetPassword(context.Background(), "b@example.com", "s3cret!"))
	mockRepo.AssertExpectations(t)
}
