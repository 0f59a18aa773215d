package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

type Repository interface {
	Register(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	VerifyIdentity(ctx context.Context, username, fullname string, birthdate models.Date) error
	ResetPassword(ctx context.Context, username, newPassword string) error
	List(ctx context.Context) ([]*models.User, error)
	Len() int
	Persist(ctx context.Context) error
}
