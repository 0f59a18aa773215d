package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
)

// RegistrationForm is what a new user submits.
type RegistrationForm struct {
	Username  string `json:"username" validate:"required,utf8"`
	Fullname  string `json:"fullname" validate:"required,utf8"`
	Email     string `json:"email" validate:"required,utf8,email"`
	Birthdate string `json:"birthdate" validate:"required,birthdate"`
	Password  string `json:"password" validate:"required"`
	Confirm   string `json:"confirm_password"`
}

// AccountService defines account operations for the interactive client.
//
// Contract:
//   - Register: validate the form and create the account.
//   - Login: authenticate by username or email.
//   - Users: list accounts without password hashes.
type AccountService interface {
	Register(ctx context.Context, form RegistrationForm) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Users(ctx context.Context) ([]*models.User, error)
}

type accountService struct {
	repo     users.Repository
	hasher   models.PasswordHasher
	validate *validator.Validate
	log      logging.Logger
}

// NewAccountService constructs an AccountService over repo. now is used for
// the birthdate range check; nil means time.Now.
func NewAccountService(repo users.Repository, hasher models.PasswordHasher, log logging.Logger, now func() time.Time) AccountService {
	if now == nil {
		now = time.Now
	}
	return &accountService{
		repo:     repo,
		hasher:   hasher,
		validate: newValidator(now),
		log:      log.With("component", "accounts"),
	}
}

// Register validates form and stores a new account. Field problems yield a
// *ValidationError, a confirmation mismatch common.ErrPasswordMismatch, and
// conflicts common.ErrUsernameTaken or common.ErrEmailInUse.
func (s *accountService) Register(ctx context.Context, form RegistrationForm) (*models.User, error) {
	if err := s.validate.StructCtx(ctx, form); err != nil {
		return nil, toValidationError(err)
	}
	if form.Password != form.Confirm {
		return nil, common.ErrPasswordMismatch
	}

	birthdate, err := models.ParseDate(form.Birthdate)
	if err != nil {
		return nil, invalid("birthdate", "birthdate", err.Error())
	}

	user, err := models.NewUser(form.Username, form.Fullname, form.Email, birthdate, form.Password, s.hasher)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.repo.Register(ctx, user); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailInUse) {
			s.log.Info(ctx, "registration rejected", "username", form.Username, "reason", err)
		}
		return nil, err
	}

	return user.Public(), nil
}

// Login returns the account for identifier if password matches, or
// common.ErrInvalidCredentials. Empty input goes through the store as well so
// every failure costs one hash verification.
func (s *accountService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	u, err := s.repo.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *accountService) Users(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}
