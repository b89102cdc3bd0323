package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.CorrelativoRepository = (*CorrelativoRepo)(nil)

// CorrelativoRepo implementación de CorrelativoRepository. Se usa dentro de
// una transacción: GetForUpdate toma el candado de fila y UpdateUltimoNumero
// lo libera al hacer commit.
type CorrelativoRepo struct {
	q Querier
}

// NewCorrelativoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorrelativoRepository(q Querier) *CorrelativoRepo {
	return &CorrelativoRepo{q: q}
}

// GetForUpdate bloquea y devuelve la fila del contador, o domain.ErrNotFound.
func (r *CorrelativoRepo) GetForUpdate(ctx context.Context, empresaID, tipoDTE string, anio int) (*entity.Correlativo, error) {
	query := `
		SELECT id, empresa_id, tipo_dte, anio, ultimo_numero, updated_at
		FROM correlativos
		WHERE empresa_id = $1 AND tipo_dte = $2 AND anio = $3
		FOR UPDATE`
	var c entity.Correlativo
	err := r.q.QueryRow(ctx, query, empresaID, tipoDTE, anio).Scan(
		&c.ID, &c.EmpresaID, &c.TipoDTE, &c.Anio, &c.UltimoNumero, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get correlativo for update: %w", err)
	}
	return &c, nil
}

// Create inserta la fila del contador para el año. Dos transacciones pueden
// llegar aquí a la vez; la que pierde recibe domain.ErrDuplicate y reintenta.
func (r *CorrelativoRepo) Create(ctx context.Context, c *entity.Correlativo) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO correlativos (id, empresa_id, tipo_dte, anio, ultimo_numero, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.q.Exec(ctx, query, c.ID, c.EmpresaID, c.TipoDTE, c.Anio, c.UltimoNumero)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert correlativo: %w", err)
	}
	return nil
}

// UpdateUltimoNumero persiste el contador incrementado.
func (r *CorrelativoRepo) UpdateUltimoNumero(ctx context.Context, id string, ultimo int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE correlativos SET ultimo_numero = $2, updated_at = now() WHERE id = $1`,
		id, ultimo)
	if err != nil {
		return fmt.Errorf("update correlativo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
