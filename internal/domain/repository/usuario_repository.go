package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// UsuarioRepository define el puerto de persistencia para Usuario.
type UsuarioRepository interface {
	Create(ctx context.Context, u *entity.Usuario) error
	GetByEmail(ctx context.Context, email string) (*entity.Usuario, error)
	GetByID(ctx context.Context, id string) (*entity.Usuario, error)
}
