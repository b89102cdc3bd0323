package facturacion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/internal/dte/builder"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// GeneradorDTE construye el JSON del DTE a partir de la venta.
type GeneradorDTE interface {
	Generar(ctx context.Context, empresa *entity.Empresa, doc builder.Documento) (*builder.Resultado, error)
}

// Emisor lleva una venta por el pipeline fiscal completo: construir el DTE,
// firmarlo con el certificado de la empresa y transmitirlo a MH. También
// ejecuta la invalidación de documentos ya aceptados.
type Emisor struct {
	empresas repository.EmpresaRepository
	clientes repository.ClienteRepository
	ventas   repository.VentaRepository
	gen      GeneradorDTE
	firmador FirmadorDTE
	mh       TransmisorMH
	log      *logger.Logger
	reloj    func() time.Time
}

// NewEmisor construye el emisor.
func NewEmisor(
	empresas repository.EmpresaRepository,
	clientes repository.ClienteRepository,
	ventas repository.VentaRepository,
	gen GeneradorDTE,
	firmador FirmadorDTE,
	mh TransmisorMH,
	log *logger.Logger,
) *Emisor {
	return &Emisor{
		empresas: empresas,
		clientes: clientes,
		ventas:   ventas,
		gen:      gen,
		firmador: firmador,
		mh:       mh,
		log:      log,
		reloj:    time.Now,
	}
}

// EmitirVenta construye, firma y transmite el DTE de la venta. Es
// idempotente: una venta ya aceptada por MH no se reenvía. Los
// identificadores fiscales se persisten ANTES del envío, de modo que un
// reintento reconstruye exactamente el mismo documento.
func (e *Emisor) EmitirVenta(ctx context.Context, ventaID string) error {
	venta, err := e.ventas.GetByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("emision: cargando venta %s: %w", ventaID, err)
	}
	switch venta.EstadoDTE {
	case entity.EstadoDTEAceptadoMH:
		return nil
	case entity.EstadoDTEAnulado:
		return fmt.Errorf("emision: %w: la venta %s está anulada", domain.ErrConflict, ventaID)
	}

	empresa, err := e.empresas.GetByID(ctx, venta.EmpresaID)
	if err != nil {
		return fmt.Errorf("emision: cargando empresa: %w", err)
	}

	doc := &builder.VentaDTE{Venta: venta}
	if venta.ClienteID != "" {
		cliente, err := e.clientes.GetByID(ctx, venta.EmpresaID, venta.ClienteID)
		if err != nil {
			return fmt.Errorf("emision: cargando cliente: %w", err)
		}
		doc.Cliente = cliente
	}
	if venta.VentaRelacionadaID != "" {
		rel, err := e.ventas.GetByID(ctx, venta.VentaRelacionadaID)
		if err != nil {
			return fmt.Errorf("emision: cargando venta relacionada: %w", err)
		}
		doc.Relacionada = rel
	}

	res, err := e.gen.Generar(ctx, empresa, doc)
	if err != nil {
		return e.marcarFallo(ctx, venta, err)
	}
	if venta.CodigoGeneracion != res.CodigoGeneracion || venta.NumeroControl != res.NumeroControl {
		if err := e.ventas.UpdateIdentificadores(ctx, venta.ID, res.CodigoGeneracion, res.NumeroControl); err != nil {
			return fmt.Errorf("emision: guardando identificadores: %w", err)
		}
		venta.CodigoGeneracion = res.CodigoGeneracion
		venta.NumeroControl = res.NumeroControl
	}

	jws, err := e.firmador.FirmarDTE(empresa.ArchivoCertificado, empresa.ClaveCertificado, res.JSON)
	if err != nil {
		return e.marcarFallo(ctx, venta, err)
	}
	venta.JSONFirmado = jws

	sello, err := e.mh.EnviarDTE(ctx, empresa, EnvioDTE{
		Version:          res.Version,
		TipoDTE:          venta.TipoDTE,
		CodigoGeneracion: res.CodigoGeneracion,
		Documento:        jws,
	})
	if err != nil {
		return e.marcarFallo(ctx, venta, err)
	}

	venta.EstadoDTE = entity.EstadoDTEAceptadoMH
	venta.SelloRecepcion = sello
	venta.ErrorEnvio = ""
	venta.ObservacionesMH = ""
	if err := e.ventas.UpdateEstadoDTE(ctx, venta); err != nil {
		return fmt.Errorf("emision: guardando aceptación: %w", err)
	}
	e.log.Info().
		Str("venta_id", venta.ID).
		Str("numero_control", venta.NumeroControl).
		Str("sello", sello).
		Msg("DTE aceptado por MH")
	return nil
}

// marcarFallo persiste el resultado del fallo en la venta y devuelve la
// causa original para que la tarea decida si reintenta. Solo un rechazo de
// negocio de MH mueve la venta a RechazadoMH; los demás fallos la dejan en
// PendienteEnvio con el mensaje registrado.
func (e *Emisor) marcarFallo(ctx context.Context, venta *entity.Venta, causa error) error {
	var rech *domain.RechazoMH
	if errors.As(causa, &rech) {
		venta.EstadoDTE = entity.EstadoDTERechazadoMH
		venta.ErrorEnvio = rech.Descripcion
		venta.ObservacionesMH = strings.Join(rech.Observaciones, "; ")
	} else {
		venta.EstadoDTE = entity.EstadoDTEPendienteEnvio
		venta.ErrorEnvio = causa.Error()
	}
	if err := e.ventas.UpdateEstadoDTE(ctx, venta); err != nil {
		e.log.Error().Err(err).Str("venta_id", venta.ID).
			Msg("no se pudo persistir el fallo de emisión")
	}
	return causa
}
