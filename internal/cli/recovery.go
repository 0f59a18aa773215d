package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// maxAttempts bounds the identity answers and new-password entries accepted
// in one forgot session.
const maxAttempts = 3

// Forgot walks the user through password recovery: email, identity answers,
// then a new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	challengeID, err := a.recovery.Identify(ctx, email)
	if err != nil {
		return a.reportRejection(err)
	}
	a.say("If an account uses this email, answer the following to verify your identity.")

	token, err := a.verifyIdentity(ctx, challengeID)
	if err != nil || token == "" {
		return err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		password, err := getPassword(a.reader, "New password", a.out)
		if err != nil {
			return err
		}
		confirm, err := getPassword(a.reader, "Confirm new password", a.out)
		if err != nil {
			return err
		}

		err = a.recovery.Reset(ctx, token, password, confirm)
		if err == nil {
			a.say("Password changed! You can now log in.")
			return nil
		}
		if !errors.Is(err, common.ErrPasswordMismatch) && !errors.Is(err, common.ErrValidation) {
			return a.reportRejection(err)
		}
		_ = a.reportRejection(err)
	}

	a.say("Too many attempts, please start again.")
	return nil
}

// verifyIdentity asks for full name and birthdate until the challenge is
// answered or the attempts run out. An empty token with a nil error means
// the user gave up.
func (a *App) verifyIdentity(ctx context.Context, challengeID string) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fullname, err := getSimpleText(a.reader, "Full name", a.out)
		if err != nil {
			return "", err
		}
		raw, err := getSimpleText(a.reader, "Birthdate (YYYY-MM-DD)", a.out)
		if err != nil {
			return "", err
		}

		birthdate, err := models.ParseDate(raw)
		if err != nil {
			a.say("Invalid input: birthdate must be in YYYY-MM-DD form")
			continue
		}

		token, err := a.recovery.Verify(ctx, challengeID, fullname, birthdate)
		if err == nil {
			a.say("Identity verified.")
			return token, nil
		}
		if !errors.Is(err, common.ErrVerificationFailed) {
			return "", err
		}
		a.say("The information does not match our records.")
	}

	a.say("Too many attempts, please start again.")
	return "", nil
}
