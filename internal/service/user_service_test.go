package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "inspector",
		Email:    "inspector@example.com",
		Password: "secret123",
		Role:     model.RoleInternal,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleInternal, created.Role)

	token, err := env.users.Login(ctx, LoginUserRequest{
		Email:    "inspector@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	_, err = env.users.Login(ctx, LoginUserRequest{
		Email:    "inspector@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserSupplierRequiresSupplierID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "supplier1",
		Email:    "supplier1@example.com",
		Password: "secret123",
		Role:     model.RoleSupplier,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	created, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username:   "supplier1",
		Email:      "supplier1@example.com",
		Password:   "secret123",
		Role:       model.RoleSupplier,
		SupplierID: "SUP-A",
	})
	require.NoError(t, err)
	assert.Equal(t, "SUP-A", created.SupplierID)
}

func TestCreateUserDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "manager1",
		Email:    "manager1@example.com",
		Password: "secret123",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)

	_, err = env.users.CreateUser(ctx, CreateUserRequest{
		Username: "manager1",
		Email:    "other@example.com",
		Password: "secret123",
		Role:     model.RoleManager,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = env.users.CreateUser(ctx, CreateUserRequest{
		Username: "other",
		Email:    "manager1@example.com",
		Password: "secret123",
		Role:     model.RoleManager,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestCreateUserUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser(context.Background(), CreateUserRequest{
		Username: "x",
		Email:    "x@example.com",
		Password: "secret123",
		Role:     "admin",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	ctx := context.Background()

	require.NoError(t, env.users.DeleteUser(ctx, user.ID.String()))

	_, err := env.users.GetUserByID(ctx, user.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = env.users.DeleteUser(ctx, user.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
