package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "learnpath/internal/errors"
	"learnpath/internal/model"
	"learnpath/internal/service"
)

type mockUserService struct {
	service.UserService
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, actorRole model.Role, in service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, actorRole, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) SetPassword(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func setup(t *testing.T, password string) (*commandLine, *mockUserService, *bool) {
	t.Helper()
	prev := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = prev })

	migrated := false
	users := new(mockUserService)
	return &commandLine{
		migrate: func() error { migrated = true; return nil },
		users:   users,
	}, users, &migrated
}

func execute(cli *commandLine, args ...string) (string, error) {
	cmd := newRootCmd(cli)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, migrated := setup(t, "")

	out, err := execute(cli, "migrate")
	require.NoError(t, err)
	assert.True(t, *migrated)
	assert.Contains(t, out, "schema up to date")
}

func Test_commandLine_addUser(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		password string
		wantRole model.Role
		wantErr  error
	}{
		{name: "admin", args: []string{"adduser", "root@example.com", "--admin", "--name", "Root"}, password: "s3cret!", wantRole: model.RoleAdmin},
		{name: "standard", args: []string{"adduser", "dev@example.com"}, password: "s3cret!", wantRole: model.RoleStandard},
		{name: "empty password", args: []string{"adduser", "dev@example.com"}, password: "", wantErr: errEmptyPassword},
		{name: "short password", args: []string{"adduser", "dev@example.com"}, password: "abc12", wantErr: errShortPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, users, _ := setup(t, tt.password)
			if tt.wantErr == nil {
				users.On("CreateUser", mock.Anything, model.RoleAdmin, mock.MatchedBy(func(in service.CreateUserInput) bool {
					return in.Email == tt.args[1] && in.Password == tt.password && in.Role == tt.wantRole
				})).Return(&model.User{ID: uuid.New(), Email: tt.args[1], Role: tt.wantRole}, nil)
			}

			out, err := execute(cli, tt.args...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "created "+string(tt.wantRole)+" user "+tt.args[1])
			users.AssertExpectations(t)
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, users, _ := setup(t, "n3w-pass")
	users.On("SetPassword", mock.Anything, "dev@example.com", "n3w-pass").Return(nil)
	users.On("SetPassword", mock.Anything, "ghost@example.com", "n3w-pass").Return(apperrors.ErrUserNotFound)

	out, err := execute(cli, "resetpassword", "dev@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "password updated")

	_, err = execute(cli, "resetpassword", "ghost@example.com")
	assert.Equal(t, apperrors.ErrUserNotFound, err)

	_, err = execute(cli, "resetpassword")
	assert.Error(t, err)
}

func Test_commandLine_resetPasswordTooShort(t *testing.T) {
	cli, users, _ := setup(t, "short")

	_, err := execute(cli, "resetpassword", "dev@example.com")
	assert.ErrorIs(t, err, errShortPassword)
	users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
}
