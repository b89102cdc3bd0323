package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.TareaRepository = (*TareaRepo)(nil)

// TareaRepo implementación de TareaRepository (usable con pool o tx).
type TareaRepo struct {
	q Querier
}

// NewTareaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTareaRepository(q Querier) *TareaRepo {
	return &TareaRepo{q: q}
}

const columnasTarea = `
	id, venta_id, tipo, estado, intentos, proximo_reintento, iniciada_at,
	COALESCE(error_mensaje, ''), COALESCE(motivo_anulacion, ''), creada_at, actualizada_at`

func escanearTarea(row pgx.Row, t *entity.TareaFacturacion) error {
	return row.Scan(
		&t.ID, &t.VentaID, &t.Tipo, &t.Estado, &t.Intentos,
		&t.ProximoReintento, &t.IniciadaAt,
		&t.ErrorMensaje, &t.MotivoAnulacion, &t.CreadaAt, &t.ActualizadaAt,
	)
}

// Create persiste una nueva tarea de facturación.
func (r *TareaRepo) Create(ctx context.Context, t *entity.TareaFacturacion) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Estado == "" {
		t.Estado = entity.TareaPendiente
	}
	query := `
		INSERT INTO tareas_facturacion (id, venta_id, tipo, estado, intentos,
			proximo_reintento, error_mensaje, motivo_anulacion, creada_at, actualizada_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.VentaID, t.Tipo, t.Estado, t.Intentos,
		t.ProximoReintento, nullIfEmpty(t.ErrorMensaje), nullIfEmpty(t.MotivoAnulacion),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tarea: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea por ID.
func (r *TareaRepo) GetByID(ctx context.Context, id string) (*entity.TareaFacturacion, error) {
	var t entity.TareaFacturacion
	err := escanearTarea(r.q.QueryRow(ctx,
		`SELECT `+columnasTarea+` FROM tareas_facturacion WHERE id = $1`, id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tarea: %w", err)
	}
	return &t, nil
}

// GetByVenta obtiene la tarea más reciente de una venta y tipo dado.
func (r *TareaRepo) GetByVenta(ctx context.Context, ventaID, tipo string) (*entity.TareaFacturacion, error) {
	var t entity.TareaFacturacion
	err := escanearTarea(r.q.QueryRow(ctx,
		`SELECT `+columnasTarea+` FROM tareas_facturacion
		 WHERE venta_id = $1 AND tipo = $2 ORDER BY creada_at DESC LIMIT 1`,
		ventaID, tipo), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tarea por venta: %w", err)
	}
	return &t, nil
}

// ClaimPendientes reclama hasta limit tareas elegibles marcándolas Procesando
// en una sola sentencia, para que varios workers no tomen la misma tarea.
// También rescata tareas Procesando cuya iniciada_at superó el lease
// (huérfanas de un worker caído).
func (r *TareaRepo) ClaimPendientes(ctx context.Context, limit int, lease time.Duration, now time.Time) ([]*entity.TareaFacturacion, error) {
	query := `
		UPDATE tareas_facturacion SET estado = $1, iniciada_at = $2, actualizada_at = $2
		WHERE id IN (
			SELECT id FROM tareas_facturacion
			WHERE (estado = $3 AND (proximo_reintento IS NULL OR proximo_reintento <= $2))
			   OR (estado = $1 AND iniciada_at < $4)
			ORDER BY creada_at
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + columnasTarea
	rows, err := r.q.Query(ctx, query,
		entity.TareaProcesando, now, entity.TareaPendiente, now.Add(-lease), limit)
	if err != nil {
		return nil, fmt.Errorf("claim tareas: %w", err)
	}
	defer rows.Close()
	var list []*entity.TareaFacturacion
	for rows.Next() {
		var t entity.TareaFacturacion
		if err := escanearTarea(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tarea: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Update persiste estado, intentos, próximo reintento y mensaje de error.
func (r *TareaRepo) Update(ctx context.Context, t *entity.TareaFacturacion) error {
	query := `
		UPDATE tareas_facturacion SET estado = $2, intentos = $3,
			proximo_reintento = $4, iniciada_at = $5,
			error_mensaje = $6, actualizada_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Estado, t.Intentos, t.ProximoReintento, t.IniciadaAt,
		nullIfEmpty(t.ErrorMensaje),
	)
	if err != nil {
		return fmt.Errorf("update tarea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
