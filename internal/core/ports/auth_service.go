package ports

import (
	"context"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
