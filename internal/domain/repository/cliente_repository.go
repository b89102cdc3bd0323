package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ClienteRepository define el puerto de persistencia para Cliente.
type ClienteRepository interface {
	Create(ctx context.Context, c *entity.Cliente) error
	Update(ctx context.Context, c *entity.Cliente) error
	GetByID(ctx context.Context, empresaID, id string) (*entity.Cliente, error)
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Cliente, error)
}
