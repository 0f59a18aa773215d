package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

func TestForgot_Success(t *testing.T) {
	r := &fakeRecovery{}
	a, out := newTestApp(nil, r)
	stubInputs(t, []string{"a@example.com", "Nguyen Van A", "2000-01-01"}, []string{"new", "new"})

	require.NoError(t, a.Forgot(context.Background()))

	assert.Equal(t, "a@example.com", r.identifyEmail)
	assert.Equal(t, "Nguyen Van A", r.verifyName)
	assert.Equal(t, models.Date{Year: 2000, Month: 1, Day: 1}, r.verifyDate)
	assert.Equal(t, "token", r.resetToken)
	assert.Equal(t, "new", r.resetPass)
	assert.Contains(t, out.String(), "Password changed!")
}

func TestForgot_RetriesVerificationAndPasswords(t *testing.T) {
	r := &fakeRecovery{
		verifyErrs: []error{common.ErrVerificationFailed, nil},
		resetErrs:  []error{common.ErrPasswordMismatch, nil},
	}
	a, out := newTestApp(nil, r)
	stubInputs(t,
		[]string{"a@example.com", "Wrong Name", "2000-01-01", "Nguyen Van A", "2000-01-01"},
		[]string{"x", "y", "new", "new"},
	)

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, out.String(), "does not match")
	assert.Contains(t, out.String(), "Passwords do not match!")
	assert.Contains(t, out.String(), "Password changed!")
}

func TestForgot_GivesUpAfterMaxAttempts(t *testing.T) {
	r := &fakeRecovery{verifyErrs: []error{
		common.ErrVerificationFailed, common.ErrVerificationFailed, common.ErrVerificationFailed,
	}}
	a, out := newTestApp(nil, r)
	stubInputs(t, []string{"a@example.com", "a", "2000-01-01", "b", "2000-01-01", "c", "2000-01-01"}, nil)

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, out.String(), "Too many attempts")
	assert.Empty(t, r.resetToken)
}

func TestForgot_BadBirthdateCountsAsAttempt(t *testing.T) {
	r := &fakeRecovery{}
	a, out := newTestApp(nil, r)
	stubInputs(t, []string{"a@example.com", "n", "01/01/2000", "n", "2000-01-01"}, []string{"p", "p"})

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, out.String(), "YYYY-MM-DD")
	assert.Contains(t, out.String(), "Password changed!")
}

func TestForgot_InvalidEmail(t *testing.T) {
	r := &fakeRecovery{identifyErr: &services.ValidationError{Fields: []services.FieldError{{Field: "email", Message: "must be a valid email address"}}}}
	a, out := newTestApp(nil, r)
	stubInputs(t, []string{"nope"}, nil)

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, out.String(), "Invalid input: email")
}

func TestForgot_ExpiredToken(t *testing.T) {
	r := &fakeRecovery{resetErrs: []error{common.ErrTokenExpired}}
	a, out := newTestApp(nil, r)
	stubInputs(t, []string{"a@example.com", "n", "2000-01-01"}, []string{"p", "p"})

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, out.String(), "expired")
}

func TestForgot_StorageErrorPropagates(t *testing.T) {
	r := &fakeRecovery{resetErrs: []error{errors.Join(common.ErrStorage, errors.New("disk full"))}}
	a, _ := newTestApp(nil, r)
	stubInputs(t, []string{"a@example.com", "n", "2000-01-01"}, []string{"p", "p"})

	assert.ErrorIs(t, a.Forgot(context.Background()), common.ErrStorage)
}
