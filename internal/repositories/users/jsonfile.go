package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

var _ Repository = (*JSONFileRepository)(nil)

// DefaultPath is used when no users file is configured.
const DefaultPath = "users.json"

// JSONFileRepository keeps all accounts in memory and mirrors them to a
// single JSON file after every change.
type JSONFileRepository struct {
	mu     sync.RWMutex
	path   string
	users  map[string]*models.User
	order  []string
	hasher models.PasswordHasher
	log    logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewJSONFileRepository creates the store for path and loads it eagerly.
// If path is empty, DefaultPath is used.
func NewJSONFileRepository(ctx context.Context, path string, hasher models.PasswordHasher, log logging.Logger) *JSONFileRepository {
	if path == "" {
		path = DefaultPath
	}

	r := &JSONFileRepository{
		path:   path,
		users:  make(map[string]*models.User),
		hasher: hasher,
		log:    log.With("component", "users", "path", path),
	}
	r.Load(ctx)

	return r
}

// Load replaces the in-memory accounts with the contents of the file.
// Missing, unreadable or undecodable files leave the store empty; the
// problem is logged, not returned.
func (r *JSONFileRepository) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]*models.User)
	r.order = nil

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Warn(ctx, "users file not found, starting with an empty store")
		} else {
			r.log.Warn(ctx, "cannot read users file, starting with an empty store", "error", err)
		}
		return
	}

	if len(bytes.TrimSpace(data)) == 0 {
		r.log.Info(ctx, "users file is empty")
		return
	}

	order, byName, err := decodeUsers(data)
	if err != nil {
		r.log.Warn(ctx, "cannot decode users file, starting with an empty store", "error", err)
		r.quarantine(ctx)
		return
	}

	r.users = byName
	r.order = order
	r.log.Info(ctx, "users loaded", "count", len(order))
}

// quarantine moves an undecodable file aside so the next persist does not
// overwrite it.
func (r *JSONFileRepository) quarantine(ctx context.Context) {
	target := r.path + ".corrupt"
	if err := os.Rename(r.path, target); err != nil {
		r.log.Warn(ctx, "cannot move undecodable users file aside", "error", err)
		return
	}
	r.log.Warn(ctx, "undecodable users file moved aside", "target", target)
}

// Register inserts user and persists the store. Text fields that are not
// valid UTF-8 yield common.ErrValidation. Otherwise it fails with
// common.ErrUsernameTaken or common.ErrEmailInUse, checked in that order.
func (r *JSONFileRepository) Register(ctx context.Context, user *models.User) error {
	if err := checkText(user); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return common.ErrUsernameTaken
	}
	if r.findByEmailLocked(user.Email) != nil {
		return common.ErrEmailInUse
	}

	r.users[user.Username] = user.Clone()
	r.order = append(r.order, user.Username)

	if err := r.persistLocked(); err != nil {
		delete(r.users, user.Username)
		r.order = r.order[:len(r.order)-1]
		r.log.Error(ctx, "registration rolled back", "username", user.Username, "error", err)
		return err
	}

	r.log.Info(ctx, "user registered", "username", user.Username)
	return nil
}

// checkText rejects fields JSON cannot carry unchanged. Invalid UTF-8 would
// be rewritten as U+FFFD on disk, so distinct keys could collide on reload.
func checkText(user *models.User) error {
	fields := []struct{ name, value string }{
		{"username", user.Username},
		{"fullname", user.Fullname},
		{"email", user.Email},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", common.ErrValidation, f.name)
		}
	}
	return nil
}

// FindByUsername returns a copy of the account or common.ErrorNotFound.
func (r *JSONFileRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

// FindByEmail returns a copy of the first account, in insertion order,
// whose email equals email, or common.ErrorNotFound.
func (r *JSONFileRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findByEmailLocked(email)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *JSONFileRepository) findByEmailLocked(email string) *models.User {
	for _, name := range r.order {
		if u := r.users[name]; u.Email == email {
			return u
		}
	}
	return nil
}

// Authenticate resolves identifier as a username, then as an email, and
// checks password. Every failure is common.ErrInvalidCredentials.
func (r *JSONFileRepository) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	r.mu.RLock()
	u, ok := r.users[identifier]
	if !ok {
		u = r.findByEmailLocked(identifier)
	}
	if u != nil {
		u = u.Clone()
	}
	r.mu.RUnlock()

	if u == nil {
		// unknown identifiers cost one hash verification too
		cryptox.VerifyPassword(r.dummy(ctx), password)
		r.log.Info(ctx, "login failed", "identifier", identifier)
		return nil, common.ErrInvalidCredentials
	}

	if !u.VerifyPassword(password) {
		r.log.Info(ctx, "login failed", "identifier", identifier)
		return nil, common.ErrInvalidCredentials
	}

	r.log.Info(ctx, "login succeeded", "username", u.Username)
	return u, nil
}

// dummy returns a hash that no password matches, for unknown identifiers.
func (r *JSONFileRepository) dummy(ctx context.Context) string {
	r.dummyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err == nil {
			r.dummyHash, err = r.hasher.Hash(secret)
		}
		if err != nil || r.dummyHash == "" {
			r.log.Warn(ctx, "cannot hash dummy secret, using placeholder", "error", err)
			r.dummyHash = cryptox.PlaceholderHash(cryptox.DefaultParams())
		}
	})
	return r.dummyHash
}

// VerifyIdentity checks fullname and birthdate against the stored account.
// Unknown usernames and mismatches both yield common.ErrVerificationFailed.
func (r *JSONFileRepository) VerifyIdentity(ctx context.Context, username, fullname string, birthdate models.Date) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok || !u.MatchesIdentity(fullname, birthdate) {
		return common.ErrVerificationFailed
	}
	return nil
}

// ResetPassword rehashes the password of username and persists the store.
// An unknown username yields common.ErrorNotFound.
func (r *JSONFileRepository) ResetPassword(ctx context.Context, username, newPassword string) error {
	r.mu.RLock()
	u, ok := r.users[username]
	if ok {
		u = u.Clone()
	}
	r.mu.RUnlock()

	if !ok {
		return common.ErrorNotFound
	}

	// hash outside the lock
	if err := u.SetPassword(newPassword, r.hasher); err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	previous := current.PasswordHash
	current.PasswordHash = u.PasswordHash

	if err := r.persistLocked(); err != nil {
		current.PasswordHash = previous
		r.log.Error(ctx, "password reset rolled back", "username", username, "error", err)
		return err
	}

	r.log.Info(ctx, "password reset", "username", username)
	return nil
}

// List returns all accounts in insertion order, without password hashes.
func (r *JSONFileRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.users[name].Public())
	}
	return out, nil
}

// Len returns the number of accounts.
func (r *JSONFileRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Persist writes the whole store to the file.
func (r *JSONFileRepository) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.persistLocked(); err != nil {
		r.log.Error(ctx, "persist failed", "error", err)
		return err
	}
	r.log.Debug(ctx, "users persisted", "count", len(r.order))
	return nil
}

// persistLocked serializes every account and replaces the file through a
// temporary file and rename. Callers hold r.mu.
func (r *JSONFileRepository) persistLocked() error {
	data, err := encodeUsers(r.order, r.users)
	if err != nil {
		return fmt.Errorf("%w: encode users: %v", common.ErrStorage, err)
	}

	if _, err := filex.EnsureParentDir(r.path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", common.ErrStorage, r.path, err)
	}
	return nil
}
