package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

// stubInputs feeds answers to getSimpleText and getPassword in order.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(passwords) == 0 {
			return "", io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return v, nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAccounts struct {
	regForm services.RegistrationForm
	regErr  error

	loginID   string
	loginPass string
	loginOut  *models.User
	loginErr  error

	usersOut []*models.User
	usersErr error
}

func (f *fakeAccounts) Register(_ context.Context, form services.RegistrationForm) (*models.User, error) {
	f.regForm = form
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{Username: form.Username}, nil
}

func (f *fakeAccounts) Login(_ context.Context, id, pass string) (*models.User, error) {
	f.loginID, f.loginPass = id, pass
	return f.loginOut, f.loginErr
}

func (f *fakeAccounts) Users(context.Context) ([]*models.User, error) {
	return f.usersOut, f.usersErr
}

type fakeRecovery struct {
	identifyEmail string
	identifyErr   error

	verifyErrs []error
	verifyName string
	verifyDate models.Date

	resetErrs  []error
	resetToken string
	resetPass  string
}

func (f *fakeRecovery) Identify(_ context.Context, email string) (string, error) {
	f.identifyEmail = email
	return "challenge", f.identifyErr
}

func (f *fakeRecovery) Verify(_ context.Context, _ string, name string, d models.Date) (string, error) {
	f.verifyName, f.verifyDate = name, d
	if len(f.verifyErrs) > 0 {
		err := f.verifyErrs[0]
		f.verifyErrs = f.verifyErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "token", nil
}

func (f *fakeRecovery) Reset(_ context.Context, token, pass, _ string) error {
	f.resetToken, f.resetPass = token, pass
	if len(f.resetErrs) > 0 {
		err := f.resetErrs[0]
		f.resetErrs = f.resetErrs[1:]
		return err
	}
	return nil
}

func newTestApp(acc services.AccountService, rec services.RecoveryService) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		accounts: acc,
		recovery: rec,
		log:      logging.Nop(),
		out:      &out,
	}, &out
}
