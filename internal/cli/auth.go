package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the registration form and creates the account.
//
// Rejections (taken username, used email, invalid fields, password mismatch)
// are reported to the user and return nil. Input and storage errors are
// returned.
func (a *App) Register(ctx context.Context) error {
	var form services.RegistrationForm
	var err error

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Username", &form.Username},
		{"Full name", &form.Fullname},
		{"Email", &form.Email},
		{"Birthdate (YYYY-MM-DD)", &form.Birthdate},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.label, a.out); err != nil {
			return err
		}
	}

	if form.Password, err = getPassword(a.reader, "Password", a.out); err != nil {
		return err
	}
	if form.Confirm, err = getPassword(a.reader, "Confirm password", a.out); err != nil {
		return err
	}

	if _, err := a.accounts.Register(ctx, form); err != nil {
		return a.reportRejection(err)
	}

	a.say("Registration successful!")
	return nil
}

// Login prompts for a username or email and a password. On success the
// account becomes the current user.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	u, err := a.accounts.Login(ctx, identifier, password)
	if err != nil {
		return a.reportRejection(err)
	}

	a.current = u
	a.say("Login successful! Welcome, " + u.Fullname + ".")
	return nil
}

// Logout forgets the current user.
func (a *App) Logout(ctx context.Context) error {
	if a.current == nil {
		a.say("Not logged in.")
		return nil
	}
	a.log.Info(ctx, "logout", "username", a.current.Username)
	a.current = nil
	a.say("Logged out.")
	return nil
}

// reportRejection prints a user-facing message for expected rejections and
// returns nil for them. Anything else is returned unchanged.
func (a *App) reportRejection(err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			a.say("Invalid input: " + f.String())
		}
	case errors.Is(err, common.ErrUsernameTaken):
		a.say("Username already exists!")
	case errors.Is(err, common.ErrEmailInUse):
		a.say("Email is already in use!")
	case errors.Is(err, common.ErrPasswordMismatch):
		a.say("Passwords do not match!")
	case errors.Is(err, common.ErrInvalidCredentials):
		a.say("Invalid username/email or password!")
	case errors.Is(err, common.ErrVerificationFailed):
		a.say("The information does not match our records.")
	case errors.Is(err, common.ErrTokenExpired):
		a.say("The recovery session has expired, please start again.")
	case errors.Is(err, common.ErrInvalidToken):
		a.say("The recovery session is no longer valid, please start again.")
	default:
		return err
	}
	return nil
}
