package service

import (
	"context"
	"testing"

	"tush00nka/chathub/internal/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.users.Register(ctx, "erin", "Erin@Example.com", "s3cret-pass")
	req.NoError(err)
	req.NotEmpty(res.AccessToken)
	req.Equal("erin@example.com", res.User.Email)

	_, err = f.users.Register(ctx, "erin", "other@example.com", "x")
	req.ErrorIs(err, apperror.ErrConflict)

	_, err = f.users.Register(ctx, "erin2", "erin@example.com", "x")
	req.ErrorIs(err, apperror.ErrConflict)

	_, err = f.users.Register(ctx, "", "", "")
	req.ErrorIs(err, apperror.ErrValidation)

	login, err := f.users.Login(ctx, "erin", "s3cret-pass")
	req.NoError(err)
	req.Equal(res.User.ID, login.User.ID)

	_, err = f.users.Login(ctx, "erin", "wrong")
	req.ErrorIs(err, apperror.ErrUnauthorized)

	_, err = f.users.Login(ctx, "nobody", "wrong")
	req.ErrorIs(err, apperror.ErrUnauthorized)
}
