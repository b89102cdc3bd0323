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

var _ repository.ClienteRepository = (*ClienteRepo)(nil)

// ClienteRepo implementación de ClienteRepository (usable con pool o tx).
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

const selectCliente = `
	SELECT id, empresa_id, nombre, COALESCE(nrc, ''), COALESCE(nit, ''), COALESCE(dui, ''),
		COALESCE(cod_actividad, ''), COALESCE(desc_actividad, ''), COALESCE(giro, ''),
		COALESCE(direccion, ''), COALESCE(departamento, ''), COALESCE(municipio, ''),
		COALESCE(telefono, ''), COALESCE(correo, ''), created_at, updated_at
	FROM clientes`

// Create persiste un nuevo cliente.
func (r *ClienteRepo) Create(ctx context.Context, c *entity.Cliente) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO clientes (id, empresa_id, nombre, nrc, nit, dui,
			cod_actividad, desc_actividad, giro, direccion, departamento, municipio,
			telefono, correo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.EmpresaID, c.Nombre, nullIfEmpty(c.NRC), nullIfEmpty(c.NIT), nullIfEmpty(c.DUI),
		nullIfEmpty(c.CodActividad), nullIfEmpty(c.DescActividad), nullIfEmpty(c.Giro),
		nullIfEmpty(c.Direccion), nullIfEmpty(c.Departamento), nullIfEmpty(c.Municipio),
		nullIfEmpty(c.Telefono), nullIfEmpty(c.Correo),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// Update actualiza un cliente.
func (r *ClienteRepo) Update(ctx context.Context, c *entity.Cliente) error {
	query := `
		UPDATE clientes SET nombre = $3, nrc = $4, nit = $5, dui = $6,
			cod_actividad = $7, desc_actividad = $8, giro = $9,
			direccion = $10, departamento = $11, municipio = $12,
			telefono = $13, correo = $14, updated_at = now()
		WHERE id = $1 AND empresa_id = $2`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.EmpresaID, c.Nombre, nullIfEmpty(c.NRC), nullIfEmpty(c.NIT), nullIfEmpty(c.DUI),
		nullIfEmpty(c.CodActividad), nullIfEmpty(c.DescActividad), nullIfEmpty(c.Giro),
		nullIfEmpty(c.Direccion), nullIfEmpty(c.Departamento), nullIfEmpty(c.Municipio),
		nullIfEmpty(c.Telefono), nullIfEmpty(c.Correo),
	)
	if err != nil {
		return fmt.Errorf("update cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un cliente de la empresa por ID.
func (r *ClienteRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Cliente, error) {
	var c entity.Cliente
	err := r.q.QueryRow(ctx, selectCliente+` WHERE id = $1 AND empresa_id = $2`, id, empresaID).Scan(
		&c.ID, &c.EmpresaID, &c.Nombre, &c.NRC, &c.NIT, &c.DUI,
		&c.CodActividad, &c.DescActividad, &c.Giro,
		&c.Direccion, &c.Departamento, &c.Municipio,
		&c.Telefono, &c.Correo, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

// ListByEmpresa lista clientes de la empresa con paginación.
func (r *ClienteRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Cliente, error) {
	rows, err := r.q.Query(ctx,
		selectCliente+` WHERE empresa_id = $1 ORDER BY nombre LIMIT $2 OFFSET $3`,
		empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cliente
	for rows.Next() {
		var c entity.Cliente
		if err := rows.Scan(
			&c.ID, &c.EmpresaID, &c.Nombre, &c.NRC, &c.NIT, &c.DUI,
			&c.CodActividad, &c.DescActividad, &c.Giro,
			&c.Direccion, &c.Departamento, &c.Municipio,
			&c.Telefono, &c.Correo, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
