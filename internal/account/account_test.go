package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/auth"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/store"
)

func newService() (*Service, *auth.Tokens) {
	tokens := auth.NewTokens("secret", time.Hour)
	return NewService(store.NewMemory(), auth.Hasher{Cost: bcrypt.MinCost}, tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newService()

	u, err := svc.Register(ctx, "Ana", " Ana@Example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.Equal(t, "ana@example.com", u.Email)

	token, got, err := svc.Login(ctx, "ANA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, model.RoleCustomer, id.Role)
}

func TestRegisterRejectsDuplicatesAndMissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ana@example.com", "pw")
	var ce *apperr.ConflictError
	assert.ErrorAs(t, err, &ce)

	var ve *apperr.ValidationError
	_, err = svc.Register(ctx, "", "x@example.com", "pw")
	assert.ErrorAs(t, err, &ve)
	_, err = svc.Register(ctx, "X", "not-an-email", "pw")
	assert.ErrorAs(t, err, &ve)
	_, err = svc.Register(ctx, "X", "x@example.com", "")
	assert.ErrorAs(t, err, &ve)
}

func TestRegisterRejectsPasswordLongerThanBcryptAccepts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", strings.Repeat("x", 73))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	_, err = svc.EnsureAdmin(ctx, "", "root@example.com", strings.Repeat("x", 100))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	_, err = svc.Register(ctx, "Ana", "ana@example.com", strings.Repeat("x", 72))
	assert.NoError(t, err)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)

	_, _, wrongPw := svc.Login(ctx, "ana@example.com", "nope")
	_, _, unknown := svc.Login(ctx, "bob@example.com", "pw")
	var ae *apperr.AuthenticationError
	require.ErrorAs(t, wrongPw, &ae)
	require.ErrorAs(t, unknown, &ae)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	u, err := svc.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, "Ana M", "ana.m@example.com", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	var ve *apperr.ValidationError
	_, err = svc.Update(ctx, u.ID, "Ana", "ana@example.com", "root")
	assert.ErrorAs(t, err, &ve)

	var ce *apperr.ConflictError
	_, err = svc.Update(ctx, u.ID, "Ana", "bob@example.com", model.RoleCustomer)
	assert.ErrorAs(t, err, &ce)

	var nf *apperr.NotFoundError
	_, err = svc.Update(ctx, 999, "X", "x@example.com", model.RoleCustomer)
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorAs(t, svc.Delete(ctx, u.ID), &nf)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	admin, err := svc.EnsureAdmin(ctx, "", "root@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	again, err := svc.EnsureAdmin(ctx, "", "root@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)
	promoted, err := svc.EnsureAdmin(ctx, "Ana", "ana@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	_, _, err = svc.Login(ctx, "ana@example.com", "pw")
	assert.NoError(t, err, "promotion keeps the existing password")
}
