package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
)

// DefaultRecoveryTTL bounds both the identity challenge and the reset token.
const DefaultRecoveryTTL = 10 * time.Minute

// RecoveryService drives password recovery.
//
// Contract:
//   - Identify: start a challenge for an email address. The answer is the
//     same whether or not an account uses that address.
//   - Verify: answer the challenge with full name and birthdate; success
//     yields a single-use reset token.
//   - Reset: set a new password with a reset token.
type RecoveryService interface {
	Identify(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, challengeID, fullname string, birthdate models.Date) (string, error)
	Reset(ctx context.Context, resetToken, newPassword, confirm string) error
}

// RecoveryOptions configures NewRecoveryService.
type RecoveryOptions struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type challenge struct {
	username string // empty when the email is unknown
	expires  time.Time
}

type recoveryService struct {
	repo     users.Repository
	validate *validator.Validate
	log      logging.Logger
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu         sync.Mutex
	challenges map[string]challenge
	used       map[string]time.Time // jti -> token expiry
}

// NewRecoveryService constructs a RecoveryService. A missing secret is
// replaced by a random one, which makes tokens valid for this process only.
func NewRecoveryService(repo users.Repository, log logging.Logger, opts RecoveryOptions) RecoveryService {
	if len(opts.Secret) == 0 {
		opts.Secret = common.GenerateRandByteArray(32)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultRecoveryTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &recoveryService{
		repo:       repo,
		validate:   newValidator(opts.Now),
		log:        log.With("component", "recovery"),
		secret:     opts.Secret,
		ttl:        opts.TTL,
		now:        opts.Now,
		challenges: make(map[string]challenge),
		used:       make(map[string]time.Time),
	}
}

// Identify returns a fresh challenge id for email. Malformed addresses yield
// a *ValidationError.
func (s *recoveryService) Identify(ctx context.Context, email string) (string, error) {
	if err := s.validate.VarCtx(ctx, email, "required,email"); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return "", invalid("email", verrs[0].Tag(), validationMessage(verrs[0].Tag(), ""))
		}
		return "", err
	}

	var username string
	u, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		username = u.Username
	case errors.Is(err, common.ErrorNotFound):
	default:
		return "", err
	}

	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.pruneLocked(now)
	s.challenges[id] = challenge{username: username, expires: now.Add(s.ttl)}
	s.mu.Unlock()

	s.log.Info(ctx, "recovery started", "challenge", id)
	return id, nil
}

// Verify checks fullname and birthdate for the challenge. Every failure is
// common.ErrVerificationFailed; the challenge survives a mismatch until it
// expires and is consumed on success.
func (s *recoveryService) Verify(ctx context.Context, challengeID, fullname string, birthdate models.Date) (string, error) {
	now := s.now()

	s.mu.Lock()
	c, ok := s.challenges[challengeID]
	if ok && !now.Before(c.expires) {
		delete(s.challenges, challengeID)
		ok = false
	}
	s.mu.Unlock()

	if !ok || c.username == "" {
		s.log.Info(ctx, "recovery verification failed", "challenge", challengeID)
		return "", common.ErrVerificationFailed
	}

	if err := s.repo.VerifyIdentity(ctx, c.username, fullname, birthdate); err != nil {
		s.log.Info(ctx, "recovery verification failed", "challenge", challengeID)
		if errors.Is(err, common.ErrVerificationFailed) {
			return "", common.ErrVerificationFailed
		}
		return "", err
	}

	s.mu.Lock()
	_, still := s.challenges[challengeID]
	delete(s.challenges, challengeID)
	s.mu.Unlock()
	if !still {
		// consumed concurrently
		return "", common.ErrVerificationFailed
	}

	token, _, err := auth.GenerateResetToken(c.username, s.secret, s.ttl, now)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "recovery verified", "username", c.username)
	return token, nil
}

// Reset sets newPassword for the account the token was issued for. Each
// token works once.
func (s *recoveryService) Reset(ctx context.Context, resetToken, newPassword, confirm string) error {
	if newPassword != confirm {
		return common.ErrPasswordMismatch
	}
	if newPassword == "" {
		return invalid("password", "required", validationMessage("required", ""))
	}

	now := s.now()
	claims, err := auth.ParseResetToken(resetToken, s.secret, now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pruneLocked(now)
	if _, spent := s.used[claims.ID]; spent {
		s.mu.Unlock()
		return common.ErrInvalidToken
	}
	s.used[claims.ID] = claims.ExpiresAt.Time
	s.mu.Unlock()

	if err := s.repo.ResetPassword(ctx, claims.Subject, newPassword); err != nil {
		// the token stays usable when nothing was changed
		s.mu.Lock()
		delete(s.used, claims.ID)
		s.mu.Unlock()
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return err
	}

	s.log.Info(ctx, "password reset via recovery", "username", claims.Subject)
	return nil
}

// pruneLocked drops expired challenges and spent token ids that could no
// longer be replayed anyway. Callers hold s.mu.
func (s *recoveryService) pruneLocked(now time.Time) {
	for id, c := range s.challenges {
		if !now.Before(c.expires) {
			delete(s.challenges, id)
		}
	}
	for jti, exp := range s.used {
		if now.After(exp) {
			delete(s.used, jti)
		}
	}
}
