package facturacion

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// ServicioVentas registra ventas y encola su trabajo fiscal. La venta, sus
// detalles y la tarea de emisión se insertan en una sola transacción: o la
// venta queda encolada para facturar o no queda nada.
type ServicioVentas struct {
	tx     TxRunner
	ventas repository.VentaRepository
	log    *logger.Logger
	reloj  func() time.Time
}

// NewServicioVentas construye el servicio.
func NewServicioVentas(tx TxRunner, ventas repository.VentaRepository, log *logger.Logger) *ServicioVentas {
	return &ServicioVentas{
		tx:     tx,
		ventas: ventas,
		log:    log,
		reloj:  time.Now,
	}
}

// CrearVenta valida y persiste la venta con sus detalles y encola la tarea
// de emisión. La venta nace en Borrador; el worker la lleva por el pipeline.
func (s *ServicioVentas) CrearVenta(ctx context.Context, venta *entity.Venta) (*entity.TareaFacturacion, error) {
	if venta.EmpresaID == "" {
		return nil, fmt.Errorf("ventas: %w: empresa requerida", domain.ErrInvalidInput)
	}
	if venta.TipoDTE == "" {
		return nil, fmt.Errorf("ventas: %w: tipo de DTE requerido", domain.ErrInvalidInput)
	}
	if len(venta.Detalles) == 0 {
		return nil, fmt.Errorf("ventas: %w: la venta necesita al menos un detalle", domain.ErrInvalidInput)
	}
	switch venta.TipoDTE {
	case entity.TipoDTENotaCredito, entity.TipoDTENotaDebito:
		if venta.VentaRelacionadaID == "" {
			return nil, fmt.Errorf("ventas: %w: una nota requiere la venta relacionada", domain.ErrInvalidInput)
		}
	}
	if venta.FechaEmision.IsZero() {
		venta.FechaEmision = s.reloj().In(tzElSalvador)
	}
	if venta.CondicionOperacion == 0 {
		venta.CondicionOperacion = entity.CondicionContado
	}
	agregarTotales(venta)

	tarea := &entity.TareaFacturacion{Tipo: entity.TareaTipoEmision}
	err := s.tx.RunVenta(ctx, func(ventaRepo repository.VentaRepository, tareaRepo repository.TareaRepository) error {
		if err := ventaRepo.Create(ctx, venta); err != nil {
			return err
		}
		for i := range venta.Detalles {
			venta.Detalles[i].VentaID = venta.ID
			venta.Detalles[i].NumeroItem = i + 1
			if err := ventaRepo.CreateDetalle(ctx, &venta.Detalles[i]); err != nil {
				return err
			}
		}
		tarea.VentaID = venta.ID
		return tareaRepo.Create(ctx, tarea)
	})
	if err != nil {
		return nil, fmt.Errorf("ventas: creando venta: %w", err)
	}
	s.log.Info().
		Str("venta_id", venta.ID).
		Str("tipo_dte", venta.TipoDTE).
		Str("tarea_id", tarea.ID).
		Msg("venta registrada y emisión encolada")
	return tarea, nil
}

// SolicitarInvalidacion encola la anulación de un DTE ya aceptado.
func (s *ServicioVentas) SolicitarInvalidacion(ctx context.Context, empresaID, ventaID, motivo string) (*entity.TareaFacturacion, error) {
	venta, err := s.ObtenerVenta(ctx, empresaID, ventaID)
	if err != nil {
		return nil, err
	}
	if venta.EstadoDTE != entity.EstadoDTEAceptadoMH {
		return nil, fmt.Errorf("ventas: %w: solo se anula un DTE aceptado por MH, la venta está en %q",
			domain.ErrConflict, venta.EstadoDTE)
	}

	tarea := &entity.TareaFacturacion{
		VentaID:         venta.ID,
		Tipo:            entity.TareaTipoInvalidacion,
		MotivoAnulacion: motivo,
	}
	err = s.tx.RunVenta(ctx, func(_ repository.VentaRepository, tareaRepo repository.TareaRepository) error {
		return tareaRepo.Create(ctx, tarea)
	})
	if err != nil {
		return nil, fmt.Errorf("ventas: encolando invalidación: %w", err)
	}
	s.log.Info().
		Str("venta_id", venta.ID).
		Str("tarea_id", tarea.ID).
		Msg("invalidación encolada")
	return tarea, nil
}

// agregarTotales suma los detalles en los totales de la venta y calcula el
// débito fiscal: la factura de consumidor final lleva el IVA incluido en la
// gravada, los documentos de crédito fiscal lo agregan sobre ella.
func agregarTotales(venta *entity.Venta) {
	gravada, exenta, noSujeta := decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range venta.Detalles {
		gravada = gravada.Add(d.VentaGravada)
		exenta = exenta.Add(d.VentaExenta)
		noSujeta = noSujeta.Add(d.VentaNoSujeta)
	}
	venta.VentaGravada = gravada
	venta.VentaExenta = exenta
	venta.VentaNoSujeta = noSujeta

	switch venta.TipoDTE {
	case entity.TipoDTEFactura:
		venta.DebitoFiscal = gravada.Sub(gravada.Div(decimal.NewFromFloat(1.13))).Round(2)
	case entity.TipoDTEComprobante, entity.TipoDTENotaCredito, entity.TipoDTENotaDebito:
		venta.DebitoFiscal = gravada.Mul(decimal.NewFromFloat(0.13)).Round(2)
	default:
		venta.DebitoFiscal = decimal.Zero
	}
}

// ObtenerVenta carga una venta verificando que pertenezca a la empresa.
func (s *ServicioVentas) ObtenerVenta(ctx context.Context, empresaID, ventaID string) (*entity.Venta, error) {
	venta, err := s.ventas.GetByID(ctx, ventaID)
	if err != nil {
		return nil, err
	}
	if venta.EmpresaID != empresaID {
		return nil, domain.ErrForbidden
	}
	return venta, nil
}

// ListarVentas lista las ventas de la empresa, más reciente primero.
func (s *ServicioVentas) ListarVentas(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Venta, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ventas.ListByEmpresa(ctx, empresaID, limit, offset)
}
