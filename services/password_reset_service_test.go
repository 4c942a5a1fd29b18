package services

import (
	"context"
	"testing"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/stretchr/testify/require"
)

func newResetFixture(t *testing.T, sender *fakeSender) (*passwordResetService, *authService, *fakeClock) {
	t.Helper()

	auth, clock := newAuthService(t)
	svc := &passwordResetService{
		db:        auth.db,
		userRepo:  auth.userRepo,
		resetRepo: repository.NewSQLiteResetTokenRepo(auth.db),
		tokenTTL:  30 * time.Minute,
		now:       clock.now,
	}
	if sender != nil {
		svc.sender = sender
	}
	return svc, auth, clock
}

func TestForgotPasswordUnavailableWithoutSender(t *testing.T) {
	svc, _, _ := newResetFixture(t, nil)

	_, err := svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "a@example.com"})
	require.ErrorIs(t, err, pkg.ErrUnavailable)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	sender := &fakeSender{}
	svc, _, _ := newResetFixture(t, sender)

	cooldown, err := svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	require.Zero(t, cooldown)
	require.Empty(t, sender.sent)
}

func TestResetPasswordFlow(t *testing.T) {
	sender := &fakeSender{}
	svc, auth, clock := newResetFixture(t, sender)
	ctx := context.Background()

	resp, err := auth.Register(ctx, registerReq("luna"))
	require.NoError(t, err)

	cooldown, err := svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "Luna@Example.com"})
	require.NoError(t, err)
	require.Zero(t, cooldown)
	token := sender.sent["luna@example.com"]
	require.Len(t, token, 64)

	cooldown, err = svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "luna@example.com"})
	require.NoError(t, err)
	require.Positive(t, cooldown)
	require.Equal(t, token, sender.sent["luna@example.com"], "no second mail during cooldown")

	clock.advance(time.Minute)
	require.NoError(t, svc.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, NewPassword: "fresh password"}))

	err = svc.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, NewPassword: "another one"})
	require.ErrorIs(t, err, pkg.ErrBadRequest, "token is single use")

	_, err = auth.RefreshToken(ctx, resp.Tokens.RefreshToken)
	require.ErrorIs(t, err, pkg.ErrUnauthorized, "sessions are revoked")

	_, err = auth.Login(ctx, &models.LoginRequest{Login: "luna", Password: "fresh password"})
	require.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	sender := &fakeSender{}
	svc, auth, clock := newResetFixture(t, sender)
	ctx := context.Background()

	_, err := auth.Register(ctx, registerReq("luna"))
	require.NoError(t, err)

	_, err = svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "luna@example.com"})
	require.NoError(t, err)
	token := sender.sent["luna@example.com"]

	clock.advance(31 * time.Minute)
	err = svc.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, NewPassword: "fresh password"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = auth.Login(ctx, &models.LoginRequest{Login: "luna", Password: "correct horse"})
	require.NoError(t, err)
}

func TestForgotPasswordSendFailure(t *testing.T) {
	sender := &fakeSender{fails: true}
	svc, auth, _ := newResetFixture(t, sender)
	ctx := context.Background()

	_, err := auth.Register(ctx, registerReq("luna"))
	require.NoError(t, err)

	_, err = svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "luna@example.com"})
	require.ErrorIs(t, err, pkg.ErrUnavailable)
}
