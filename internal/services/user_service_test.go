package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/taskhive-io/taskhive/pkg/errors"
)

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	user, err := svc.users.Register(ctx, RegisterInput{
		Name:     "Ada",
		Email:    "Ada@Example.COM",
		Password: "p@ssW0rd!",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.NotEqual(t, "p@ssW0rd!", user.Password)

	_, err = svc.users.Register(ctx, RegisterInput{Name: "", Email: "x@example.com", Password: "pw"})
	require.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.users.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = svc.users.Register(ctx, RegisterInput{Name: "Other", Email: "ADA@example.com", Password: "pw2"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	registered, err := svc.users.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	user, err := svc.users.Authenticate(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	// Unknown email and bad password collapse into the same error.
	_, err = svc.users.Authenticate(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.users.Authenticate(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGetByIDs(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	ada := seedUser(t, svc.db, "Ada", "ada@example.com")
	grace := seedUser(t, svc.db, "Grace", "grace@example.com")

	users, err := svc.users.GetByIDs(ctx, []string{ada.ID, grace.ID, ada.ID, "", "missing"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "Ada", users[ada.ID].Name)
	require.Equal(t, "Grace", users[grace.ID].Name)

	empty, err := svc.users.GetByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = svc.users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
