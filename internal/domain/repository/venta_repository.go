package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// VentaRepository define el puerto de persistencia para Venta y detalles.
type VentaRepository interface {
	Create(ctx context.Context, v *entity.Venta) error
	CreateDetalle(ctx context.Context, d *entity.DetalleVenta) error
	GetByID(ctx context.Context, id string) (*entity.Venta, error)
	GetDetalles(ctx context.Context, ventaID string) ([]entity.DetalleVenta, error)
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Venta, error)

	// UpdateIdentificadores persiste codigo_generacion y numero_control
	// apenas se asignan, antes de intentar el envío.
	UpdateIdentificadores(ctx context.Context, id, codigoGeneracion, numeroControl string) error

	// UpdateEstadoDTE actualiza el estado fiscal junto con sello,
	// mensaje de error y observaciones (vacíos se escriben como NULL).
	UpdateEstadoDTE(ctx context.Context, v *entity.Venta) error
}
