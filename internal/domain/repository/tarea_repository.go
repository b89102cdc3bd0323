package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// TareaRepository define el puerto de persistencia para TareaFacturacion.
type TareaRepository interface {
	Create(ctx context.Context, t *entity.TareaFacturacion) error
	GetByID(ctx context.Context, id string) (*entity.TareaFacturacion, error)
	GetByVenta(ctx context.Context, ventaID, tipo string) (*entity.TareaFacturacion, error)

	// ClaimPendientes reclama hasta limit tareas elegibles y las marca
	// Procesando en la misma sentencia (UPDATE ... RETURNING). Elegible:
	// Pendiente con proximo_reintento vencido o NULL, o Procesando cuya
	// iniciada_at es más vieja que lease (huérfana de un worker caído).
	ClaimPendientes(ctx context.Context, limit int, lease time.Duration, now time.Time) ([]*entity.TareaFacturacion, error)

	// Update persiste estado, intentos, proximo_reintento y error_mensaje.
	Update(ctx context.Context, t *entity.TareaFacturacion) error
}
