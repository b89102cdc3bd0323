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

var _ repository.EmpresaRepository = (*EmpresaRepo)(nil)

// EmpresaRepo implementación de EmpresaRepository (usable con pool o tx).
type EmpresaRepo struct {
	q Querier
}

// NewEmpresaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmpresaRepository(q Querier) *EmpresaRepo {
	return &EmpresaRepo{q: q}
}

const columnasEmpresa = `
	id, nombre, nombre_comercial, nit, nrc, cod_actividad, desc_actividad,
	direccion, departamento, municipio, telefono, correo,
	ambiente, cod_establecimiento, cod_punto_venta,
	user_api_mh, clave_api_mh, archivo_certificado, clave_certificado,
	created_at, updated_at`

// Create persiste una nueva empresa emisora.
func (r *EmpresaRepo) Create(ctx context.Context, e *entity.Empresa) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO empresas (` + columnasEmpresa + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now(), now())`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Nombre, nullIfEmpty(e.NombreComercial), e.NIT, e.NRC,
		e.CodActividad, e.DescActividad, e.Direccion, e.Departamento, e.Municipio,
		nullIfEmpty(e.Telefono), nullIfEmpty(e.Correo),
		e.Ambiente, e.CodEstablecimiento, e.CodPuntoVenta,
		nullIfEmpty(e.UserAPIMH), nullIfEmpty(e.ClaveAPIMH),
		nullIfEmpty(e.ArchivoCertificado), nullIfEmpty(e.ClaveCertificado),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert empresa: %w", err)
	}
	return nil
}

// Update actualiza los datos de la empresa.
func (r *EmpresaRepo) Update(ctx context.Context, e *entity.Empresa) error {
	query := `
		UPDATE empresas SET
			nombre = $2, nombre_comercial = $3, nit = $4, nrc = $5,
			cod_actividad = $6, desc_actividad = $7, direccion = $8,
			departamento = $9, municipio = $10, telefono = $11, correo = $12,
			ambiente = $13, cod_establecimiento = $14, cod_punto_venta = $15,
			user_api_mh = $16, clave_api_mh = $17,
			archivo_certificado = $18, clave_certificado = $19,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.Nombre, nullIfEmpty(e.NombreComercial), e.NIT, e.NRC,
		e.CodActividad, e.DescActividad, e.Direccion, e.Departamento, e.Municipio,
		nullIfEmpty(e.Telefono), nullIfEmpty(e.Correo),
		e.Ambiente, e.CodEstablecimiento, e.CodPuntoVenta,
		nullIfEmpty(e.UserAPIMH), nullIfEmpty(e.ClaveAPIMH),
		nullIfEmpty(e.ArchivoCertificado), nullIfEmpty(e.ClaveCertificado),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update empresa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *EmpresaRepo) GetByID(ctx context.Context, id string) (*entity.Empresa, error) {
	query := `
		SELECT id, nombre, COALESCE(nombre_comercial, ''), nit, nrc,
			cod_actividad, desc_actividad, direccion, departamento, municipio,
			COALESCE(telefono, ''), COALESCE(correo, ''),
			ambiente, cod_establecimiento, cod_punto_venta,
			COALESCE(user_api_mh, ''), COALESCE(clave_api_mh, ''),
			COALESCE(archivo_certificado, ''), COALESCE(clave_certificado, ''),
			created_at, updated_at
		FROM empresas WHERE id = $1`
	var e entity.Empresa
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Nombre, &e.NombreComercial, &e.NIT, &e.NRC,
		&e.CodActividad, &e.DescActividad, &e.Direccion, &e.Departamento, &e.Municipio,
		&e.Telefono, &e.Correo,
		&e.Ambiente, &e.CodEstablecimiento, &e.CodPuntoVenta,
		&e.UserAPIMH, &e.ClaveAPIMH, &e.ArchivoCertificado, &e.ClaveCertificado,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get empresa: %w", err)
	}
	return &e, nil
}

// List lista empresas con paginación.
func (r *EmpresaRepo) List(ctx context.Context, limit, offset int) ([]*entity.Empresa, error) {
	query := `
		SELECT id, nombre, COALESCE(nombre_comercial, ''), nit, nrc,
			cod_actividad, desc_actividad, direccion, departamento, municipio,
			COALESCE(telefono, ''), COALESCE(correo, ''),
			ambiente, cod_establecimiento, cod_punto_venta,
			COALESCE(user_api_mh, ''), COALESCE(clave_api_mh, ''),
			COALESCE(archivo_certificado, ''), COALESCE(clave_certificado, ''),
			created_at, updated_at
		FROM empresas ORDER BY nombre LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list empresas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Empresa
	for rows.Next() {
		var e entity.Empresa
		if err := rows.Scan(
			&e.ID, &e.Nombre, &e.NombreComercial, &e.NIT, &e.NRC,
			&e.CodActividad, &e.DescActividad, &e.Direccion, &e.Departamento, &e.Municipio,
			&e.Telefono, &e.Correo,
			&e.Ambiente, &e.CodEstablecimiento, &e.CodPuntoVenta,
			&e.UserAPIMH, &e.ClaveAPIMH, &e.ArchivoCertificado, &e.ClaveCertificado,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
