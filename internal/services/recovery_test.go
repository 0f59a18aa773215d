package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

var dob = models.Date{Year: 2000, Month: 1, Day: 1}

type recoveryFixture struct {
	accounts AccountService
	recovery RecoveryService
	clock    *clock
	secret   []byte
}

func newRecoveryFixture(t *testing.T) *recoveryFixture {
	t.Helper()
	repo := newTestRepo(t)
	c := &clock{t: today}
	secret := []byte("recovery-secret")

	f := &recoveryFixture{
		accounts: NewAccountService(repo, testHasher(t), logging.Nop(), c.Now),
		recovery: NewRecoveryService(repo, logging.Nop(), RecoveryOptions{Secret: secret, TTL: 10 * time.Minute, Now: c.Now}),
		clock:    c,
		secret:   secret,
	}
	_, err := f.accounts.Register(context.Background(), validForm())
	require.NoError(t, err)
	return f
}

func TestRecovery_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newRecoveryFixture(t)

	id, err := f.recovery.Identify(ctx, "a@example.com")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	_, err = f.recovery.Verify(ctx, id, "Nguyen Van B", dob)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)

	// a wrong answer does not burn the challenge
	token, err := f.recovery.Verify(ctx, id, "Nguyen Van A", dob)
	require.NoError(t, err)

	// a right answer does
	_, err = f.recovery.Verify(ctx, id, "Nguyen Van A", dob)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)

	assert.ErrorIs(t, f.recovery.Reset(ctx, token, "new-pw", "other"), common.ErrPasswordMismatch)
	assert.ErrorIs(t, f.recovery.Reset(ctx, token, "", ""), common.ErrValidation)
	require.NoError(t, f.recovery.Reset(ctx, token, "new-pw", "new-pw"))

	_, err = f.accounts.Login(ctx, "nva", "s3cret")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.accounts.Login(ctx, "nva", "new-pw")
	assert.NoError(t, err)

	// single use
	assert.ErrorIs(t, f.recovery.Reset(ctx, token, "again", "again"), common.ErrInvalidToken)
}

func TestRecovery_UnknownEmailLooksTheSame(t *testing.T) {
	ctx := context.Background()
	f := newRecoveryFixture(t)

	id, err := f.recovery.Identify(ctx, "nobody@example.com")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	_, err = f.recovery.Verify(ctx, id, "Nguyen Van A", dob)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestRecovery_IdentifyRejectsMalformedEmail(t *testing.T) {
	f := newRecoveryFixture(t)

	for _, email := range []string{"", "no-at-sign", "a@"} {
		_, err := f.recovery.Identify(context.Background(), email)
		assert.ErrorIs(t, err, common.ErrValidation, email)
	}
}

func TestRecovery_UnknownChallenge(t *testing.T) {
	f := newRecoveryFixture(t)

	_, err := f.recovery.Verify(context.Background(), uuid.NewString(), "Nguyen Van A", dob)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestRecovery_ChallengeExpires(t *testing.T) {
	ctx := context.Background()
	f := newRecoveryFixture(t)

	id, err := f.recovery.Identify(ctx, "a@example.com")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	_, err = f.recovery.Verify(ctx, id, "Nguyen Van A", dob)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestRecovery_TokenExpires(t *testing.T) {
	ctx := context.Background()
	f := newRecoveryFixture(t)

	id, err := f.recovery.Identify(ctx, "a@example.com")
	require.NoError(t, err)
	token, err := f.recovery.Verify(ctx, id, "Nguyen Van A", dob)
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)

	assert.ErrorIs(t, f.recovery.Reset(ctx, token, "new-pw", "new-pw"), common.ErrTokenExpired)
	_, err = f.accounts.Login(ctx, "nva", "s3cret")
	assert.NoError(t, err)
}

func TestRecovery_RejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newRecoveryFixture(t)

	forged, _, err := auth.GenerateResetToken("nva", []byte("other-secret"), time.Hour, today)
	require.NoError(t, err)
	assert.ErrorIs(t, f.recovery.Reset(ctx, forged, "x", "x"), common.ErrInvalidToken)

	assert.ErrorIs(t, f.recovery.Reset(ctx, "garbage", "x", "x"), common.ErrInvalidToken)

	// a valid signature for an account that does not exist
	ghost, _, err := auth.GenerateResetToken("ghost", f.secret, time.Hour, today)
	require.NoError(t, err)
	assert.ErrorIs(t, f.recovery.Reset(ctx, ghost, "x", "x"), common.ErrInvalidToken)
}

func TestRecovery_StorageFailureKeepsTokenUsable(t *testing.T) {
	ctx := context.Background()
	secret := []byte("k")
	repo := &fakeRepo{resetErr: errors.Join(common.ErrStorage, errors.New("disk full"))}
	s := NewRecoveryService(repo, logging.Nop(), RecoveryOptions{Secret: secret, Now: func() time.Time { return today }})

	token, _, err := auth.GenerateResetToken("nva", secret, time.Minute, today)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Reset(ctx, token, "pw", "pw"), common.ErrStorage)

	repo.resetErr = nil
	require.NoError(t, s.Reset(ctx, token, "pw", "pw"))
	assert.Equal(t, []string{"nva", "nva"}, repo.resetCalls)
}

func TestRecovery_IdentifyStorageError(t *testing.T) {
	repo := &fakeRepo{findByEmailErr: common.ErrStorage}
	s := NewRecoveryService(repo, logging.Nop(), RecoveryOptions{})

	_, err := s.Identify(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestRecovery_DefaultSecretIsRandom(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{findByEmailOut: &models.User{Username: "nva"}}
	a := NewRecoveryService(repo, logging.Nop(), RecoveryOptions{})
	b := NewRecoveryService(repo, logging.Nop(), RecoveryOptions{})

	id, err := a.Identify(ctx, "a@example.com")
	require.NoError(t, err)
	token, err := a.Verify(ctx, id, "Nguyen Van A", dob)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Reset(ctx, token, "pw", "pw"), common.ErrInvalidToken)
	assert.NoError(t, a.Reset(ctx, token, "pw", "pw"))
}
