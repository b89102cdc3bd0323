package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// CorrelativoRepository es el puerto del contador de números de control.
// GetForUpdate debe tomar un candado de fila (SELECT ... FOR UPDATE) para
// que dos transacciones no lean el mismo UltimoNumero.
type CorrelativoRepository interface {
	// GetForUpdate devuelve la fila bloqueada o domain.ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, empresaID, tipoDTE string, anio int) (*entity.Correlativo, error)
	// Create inserta la fila del año; colisiones de unicidad deben
	// devolver domain.ErrDuplicate.
	Create(ctx context.Context, c *entity.Correlativo) error
	// UpdateUltimoNumero persiste el contador incrementado.
	UpdateUltimoNumero(ctx context.Context, id string, ultimo int64) error
}
