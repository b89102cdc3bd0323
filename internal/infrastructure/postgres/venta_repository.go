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

var _ repository.VentaRepository = (*VentaRepo)(nil)

// VentaRepo implementación de VentaRepository (usable con pool o tx).
type VentaRepo struct {
	q Querier
}

// NewVentaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVentaRepository(q Querier) *VentaRepo {
	return &VentaRepo{q: q}
}

const selectVenta = `
	SELECT id, empresa_id, COALESCE(cliente_id::text, ''), tipo_dte, fecha_emision,
		COALESCE(codigo_generacion, ''), COALESCE(numero_control, ''), COALESCE(sello_recepcion, ''),
		COALESCE(nombre_receptor, ''), COALESCE(nrc_receptor, ''), COALESCE(tipo_doc_receptor, ''),
		COALESCE(documento_receptor, ''), COALESCE(direccion_receptor, ''), COALESCE(correo_receptor, ''),
		venta_gravada, venta_exenta, venta_no_sujeta, debito_fiscal, iva_retenido, rete_renta,
		condicion_operacion, COALESCE(plazo_credito, ''), COALESCE(periodo_credito, 0),
		COALESCE(venta_relacionada_id::text, ''),
		estado_dte, COALESCE(error_envio, ''), COALESCE(observaciones_mh, ''), COALESCE(json_firmado, ''),
		created_at, updated_at
	FROM ventas`

func escanearVenta(row pgx.Row, v *entity.Venta) error {
	return row.Scan(
		&v.ID, &v.EmpresaID, &v.ClienteID, &v.TipoDTE, &v.FechaEmision,
		&v.CodigoGeneracion, &v.NumeroControl, &v.SelloRecepcion,
		&v.NombreReceptor, &v.NRCReceptor, &v.TipoDocReceptor,
		&v.DocumentoReceptor, &v.DireccionReceptor, &v.CorreoReceptor,
		&v.VentaGravada, &v.VentaExenta, &v.VentaNoSujeta, &v.DebitoFiscal, &v.IVARetenido, &v.ReteRenta,
		&v.CondicionOperacion, &v.PlazoCredito, &v.PeriodoCredito,
		&v.VentaRelacionadaID,
		&v.EstadoDTE, &v.ErrorEnvio, &v.ObservacionesMH, &v.JSONFirmado,
		&v.CreatedAt, &v.UpdatedAt,
	)
}

// Create persiste la cabecera de la venta.
func (r *VentaRepo) Create(ctx context.Context, v *entity.Venta) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.EstadoDTE == "" {
		v.EstadoDTE = entity.EstadoDTEBorrador
	}
	query := `
		INSERT INTO ventas (id, empresa_id, cliente_id, tipo_dte, fecha_emision,
			codigo_generacion, numero_control, sello_recepcion,
			nombre_receptor, nrc_receptor, tipo_doc_receptor,
			documento_receptor, direccion_receptor, correo_receptor,
			venta_gravada, venta_exenta, venta_no_sujeta, debito_fiscal, iva_retenido, rete_renta,
			condicion_operacion, plazo_credito, periodo_credito, venta_relacionada_id,
			estado_dte, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, now(), now())`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.EmpresaID, nullIfEmpty(v.ClienteID), v.TipoDTE, v.FechaEmision,
		nullIfEmpty(v.CodigoGeneracion), nullIfEmpty(v.NumeroControl), nullIfEmpty(v.SelloRecepcion),
		nullIfEmpty(v.NombreReceptor), nullIfEmpty(v.NRCReceptor), nullIfEmpty(v.TipoDocReceptor),
		nullIfEmpty(v.DocumentoReceptor), nullIfEmpty(v.DireccionReceptor), nullIfEmpty(v.CorreoReceptor),
		v.VentaGravada, v.VentaExenta, v.VentaNoSujeta, v.DebitoFiscal, v.IVARetenido, v.ReteRenta,
		v.CondicionOperacion, nullIfEmpty(v.PlazoCredito), v.PeriodoCredito,
		nullIfEmpty(v.VentaRelacionadaID),
		v.EstadoDTE,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert venta: %w", err)
	}
	return nil
}

// CreateDetalle persiste una línea de la venta.
func (r *VentaRepo) CreateDetalle(ctx context.Context, d *entity.DetalleVenta) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO detalle_ventas (id, venta_id, numero_item, codigo, descripcion,
			cantidad, precio_unitario, monto_descuento, venta_gravada, venta_exenta, venta_no_sujeta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.VentaID, d.NumeroItem, nullIfEmpty(d.Codigo), d.Descripcion,
		d.Cantidad, d.PrecioUnitario, d.MontoDescuento,
		d.VentaGravada, d.VentaExenta, d.VentaNoSujeta,
	)
	if err != nil {
		return fmt.Errorf("insert detalle venta: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID, con sus detalles.
func (r *VentaRepo) GetByID(ctx context.Context, id string) (*entity.Venta, error) {
	var v entity.Venta
	err := escanearVenta(r.q.QueryRow(ctx, selectVenta+` WHERE id = $1`, id), &v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	detalles, err := r.GetDetalles(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Detalles = detalles
	return &v, nil
}

// GetDetalles obtiene las líneas de una venta ordenadas por número de ítem.
func (r *VentaRepo) GetDetalles(ctx context.Context, ventaID string) ([]entity.DetalleVenta, error) {
	query := `
		SELECT id, venta_id, numero_item, COALESCE(codigo, ''), descripcion,
			cantidad, precio_unitario, monto_descuento, venta_gravada, venta_exenta, venta_no_sujeta
		FROM detalle_ventas WHERE venta_id = $1 ORDER BY numero_item`
	rows, err := r.q.Query(ctx, query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("list detalles venta: %w", err)
	}
	defer rows.Close()
	var detalles []entity.DetalleVenta
	for rows.Next() {
		var d entity.DetalleVenta
		if err := rows.Scan(
			&d.ID, &d.VentaID, &d.NumeroItem, &d.Codigo, &d.Descripcion,
			&d.Cantidad, &d.PrecioUnitario, &d.MontoDescuento,
			&d.VentaGravada, &d.VentaExenta, &d.VentaNoSujeta,
		); err != nil {
			return nil, fmt.Errorf("scan detalle venta: %w", err)
		}
		detalles = append(detalles, d)
	}
	return detalles, rows.Err()
}

// ListByEmpresa lista ventas de la empresa, más recientes primero.
func (r *VentaRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Venta, error) {
	rows, err := r.q.Query(ctx,
		selectVenta+` WHERE empresa_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ventas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Venta
	for rows.Next() {
		var v entity.Venta
		if err := escanearVenta(rows, &v); err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// UpdateIdentificadores persiste los identificadores fiscales apenas se
// asignan, antes del primer intento de envío.
func (r *VentaRepo) UpdateIdentificadores(ctx context.Context, id, codigoGeneracion, numeroControl string) error {
	query := `
		UPDATE ventas SET codigo_generacion = $2, numero_control = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, codigoGeneracion, numeroControl)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update identificadores venta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateEstadoDTE actualiza el estado fiscal con sello, error y observaciones.
func (r *VentaRepo) UpdateEstadoDTE(ctx context.Context, v *entity.Venta) error {
	query := `
		UPDATE ventas SET estado_dte = $2, sello_recepcion = $3,
			error_envio = $4, observaciones_mh = $5, json_firmado = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		v.ID, v.EstadoDTE, nullIfEmpty(v.SelloRecepcion),
		nullIfEmpty(v.ErrorEnvio), nullIfEmpty(v.ObservacionesMH), nullIfEmpty(v.JSONFirmado),
	)
	if err != nil {
		return fmt.Errorf("update estado venta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
