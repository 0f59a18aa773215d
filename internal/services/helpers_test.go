package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
)

var today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testHasher(t *testing.T) *cryptox.Argon2Hasher {
	t.Helper()
	h, err := cryptox.NewArgon2Hasher(cryptox.Params{MemoryKiB: 8 * 1024, Time: 1, Threads: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	return h
}

func newTestRepo(t *testing.T) *users.JSONFileRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return users.NewJSONFileRepository(context.Background(), path, testHasher(t), logging.Nop())
}

func validForm() RegistrationForm {
	return RegistrationForm{
		Username:  "nva",
		Fullname:  "Nguyen Van A",
		Email:     "a@example.com",
		Birthdate: "2000-01-01",
		Password:  "s3cret",
		Confirm:   "s3cret",
	}
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeRepo lets tests force store failures.
type fakeRepo struct {
	users.Repository

	findByEmailOut *models.User
	findByEmailErr error
	verifyErr      error
	resetErr       error
	registerErr    error
	authErr        error

	resetCalls []string
	authCalls  []string
}

func (f *fakeRepo) Authenticate(_ context.Context, identifier, _ string) (*models.User, error) {
	f.authCalls = append(f.authCalls, identifier)
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &models.User{Username: identifier}, nil
}

func (f *fakeRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return f.findByEmailOut, f.findByEmailErr
}

func (f *fakeRepo) VerifyIdentity(context.Context, string, string, models.Date) error {
	return f.verifyErr
}

func (f *fakeRepo) ResetPassword(_ context.Context, username, _ string) error {
	f.resetCalls = append(f.resetCalls, username)
	return f.resetErr
}

func (f *fakeRepo) Register(context.Context, *models.User) error {
	return f.registerErr
}
