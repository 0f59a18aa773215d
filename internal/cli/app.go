package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/config"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

type App struct {
	config   *config.Config
	accounts services.AccountService
	recovery services.RecoveryService
	store    users.Repository
	log      logging.Logger
	current  *models.User
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp loads the users file named in c and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	hasher, err := cryptox.NewArgon2Hasher(c.Hash)
	if err != nil {
		return nil, fmt.Errorf("invalid hash parameters: %w", err)
	}

	store := users.NewJSONFileRepository(ctx, c.UsersFile, hasher, log)

	as := services.NewAccountService(store, hasher, log, nil)
	rs := services.NewRecoveryService(store, log, services.RecoveryOptions{
		Secret: []byte(c.RecoverySecret),
		TTL:    c.RecoveryTTL,
	})

	return &App{
		config:   c,
		accounts: as,
		recovery: rs,
		store:    store,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user leaves. A storage failure
// ends the session and is returned.
func (a *App) Run(ctx context.Context) error {
	a.log.Info(ctx, "accountkeeper started", "users_file", a.config.UsersFile, "accounts", a.store.Len())
	printlnFn("Welcome to accountkeeper (type 'help' for commands)")

	err := runREPL(ctx, a, a.getStatus, a.reader)
	if err != nil {
		a.log.Error(ctx, "session ended", "error", err)
	}
	return err
}

func (a *App) isLoggedIn() bool {
	return a.current != nil
}

func (a *App) getStatus() string {
	if a.current == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.current.Username)
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fatal reports whether err must end the session.
func fatal(err error) bool {
	return errors.Is(err, common.ErrStorage)
}
