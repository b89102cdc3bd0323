package facturacion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/dte/builder"
)

type entornoEmision struct {
	emisor     *Emisor
	empresas   *empresaRepoFake
	clientes   *clienteRepoFake
	ventas     *ventaRepoFake
	gen        *generadorFake
	firmador   *firmadorFake
	transmisor *transmisorFake
}

func nuevoEntornoEmision() *entornoEmision {
	e := &entornoEmision{
		empresas: &empresaRepoFake{empresas: map[string]*entity.Empresa{}},
		clientes: &clienteRepoFake{clientes: map[string]*entity.Cliente{}},
		ventas:   nuevoVentaRepoFake(),
		gen: &generadorFake{resultado: &builder.Resultado{
			JSON:             []byte(`{"identificacion":{"tipoDte":"01"}}`),
			CodigoGeneracion: "A6353166-3BC3-4F27-A123-64A204F6C23B",
			NumeroControl:    "DTE-01-M001P001-000000000000001",
			Version:          1,
		}},
		firmador:   &firmadorFake{jws: "cabecera.cuerpo.firma"},
		transmisor: &transmisorFake{sello: "20260000000000000000000000000000000000F1"},
	}
	e.empresas.empresas["emp-1"] = &entity.Empresa{
		ID:                 "emp-1",
		Nombre:             "Comercial Salvadoreña S.A. de C.V.",
		NIT:                "0614-290886-001-2",
		Ambiente:           entity.AmbientePruebas,
		ArchivoCertificado: "/certs/emp-1.crt",
		ClaveCertificado:   "secreto",
	}
	e.emisor = NewEmisor(e.empresas, e.clientes, e.ventas, e.gen, e.firmador, e.transmisor, loggerPrueba())
	e.emisor.reloj = func() time.Time {
		return time.Date(2026, 8, 29, 16, 30, 0, 0, time.UTC)
	}
	return e
}

func (e *entornoEmision) sembrarVenta(v *entity.Venta) *entity.Venta {
	_ = e.ventas.Create(context.Background(), v)
	return v
}

func ventaBase() *entity.Venta {
	return &entity.Venta{
		EmpresaID:    "emp-1",
		TipoDTE:      entity.TipoDTEFactura,
		FechaEmision: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		VentaGravada: decimal.NewFromInt(113),
		DebitoFiscal: decimal.NewFromInt(13),
		EstadoDTE:    entity.EstadoDTEBorrador,
	}
}

func TestEmitirVentaAceptada(t *testing.T) {
	e := nuevoEntornoEmision()
	venta := e.sembrarVenta(ventaBase())

	require.NoError(t, e.emisor.EmitirVenta(context.Background(), venta.ID))

	require.Len(t, e.transmisor.envios, 1)
	envio := e.transmisor.envios[0]
	assert.Equal(t, 1, envio.Version)
	assert.Equal(t, "01", envio.TipoDTE)
	assert.Equal(t, "A6353166-3BC3-4F27-A123-64A204F6C23B", envio.CodigoGeneracion)
	assert.Equal(t, "cabecera.cuerpo.firma", envio.Documento)

	guardada, err := e.ventas.GetByID(context.Background(), venta.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoDTEAceptadoMH, guardada.EstadoDTE)
	assert.Equal(t, e.transmisor.sello, guardada.SelloRecepcion)
	assert.Equal(t, "cabecera.cuerpo.firma", guardada.JSONFirmado)
	assert.Equal(t, "A6353166-3BC3-4F27-A123-64A204F6C23B", guardada.CodigoGeneracion)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", guardada.NumeroControl)
	assert.Empty(t, guardada.ErrorEnvio)
}

func TestEmitirVentaYaAceptadaNoReenvia(t *testing.T) {
	e := nuevoEntornoEmision()
	venta := ventaBase()
	venta.EstadoDTE = entity.EstadoDTEAceptadoMH
	e.sembrarVenta(venta)

	require.NoError(t, e.emisor.EmitirVenta(context.Background(), venta.ID))
	assert.Empty(t, e.transmisor.envios)
}

func TestEmitirVentaAnulada(t *testing.T) {
	e := nuevoEntornoEmision()
	venta := ventaBase()
	venta.EstadoDTE = entity.EstadoDTEAnulado
	e.sembrarVenta(venta)

	err := e.emisor.EmitirVenta(context.Background(), venta.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEmitirVentaInexistente(t *testing.T) {
	e := nuevoEntornoEmision()
	err := e.emisor.EmitirVenta(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmitirVentaRechazadaPorMH(t *testing.T) {
	e := nuevoEntornoEmision()
	e.transmisor.errEnvio = &domain.RechazoMH{
		Codigo:        "004",
		Descripcion:   "NIT del receptor inválido",
		Observaciones: []string{"campo receptor.nit"},
	}
	venta := e.sembrarVenta(ventaBase())

	err := e.emisor.EmitirVenta(context.Background(), venta.ID)
	var rech *domain.RechazoMH
	require.ErrorAs(t, err, &rech)

	guardada, errGet := e.ventas.GetByID(context.Background(), venta.ID)
	require.NoError(t, errGet)
	assert.Equal(t, entity.EstadoDTERechazadoMH, guardada.EstadoDTE)
	assert.Equal(t, "NIT del receptor inválido", guardada.ErrorEnvio)
	assert.Equal(t, "campo receptor.nit", guardada.ObservacionesMH)
}

func TestEmitirVentaErrorTransitorioQuedaPendiente(t *testing.T) {
	e := nuevoEntornoEmision()
	e.transmisor.errEnvio = fmt.Errorf("mh: %w: HTTP 503", domain.ErrEnvioTransitorio)
	venta := e.sembrarVenta(ventaBase())

	err := e.emisor.EmitirVenta(context.Background(), venta.ID)
	assert.ErrorIs(t, err, domain.ErrEnvioTransitorio)
	assert.False(t, domain.EsPermanente(err))

	guardada, errGet := e.ventas.GetByID(context.Background(), venta.ID)
	require.NoError(t, errGet)
	assert.Equal(t, entity.EstadoDTEPendienteEnvio, guardada.EstadoDTE)
	assert.Contains(t, guardada.ErrorEnvio, "HTTP 503")
	// los identificadores ya quedaron estampados para el reintento
	assert.Equal(t, "A6353166-3BC3-4F27-A123-64A204F6C23B", guardada.CodigoGeneracion)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", guardada.NumeroControl)
}

func TestEmitirVentaFalloDeFirma(t *testing.T) {
	e := nuevoEntornoEmision()
	e.firmador.err = fmt.Errorf("firmador: %w", domain.ErrClaveIncorrecta)
	venta := e.sembrarVenta(ventaBase())

	err := e.emisor.EmitirVenta(context.Background(), venta.ID)
	assert.ErrorIs(t, err, domain.ErrClaveIncorrecta)
	assert.True(t, domain.EsPermanente(err))
	assert.Empty(t, e.transmisor.envios)
}

func TestEmitirVentaCargaClienteYRelacionada(t *testing.T) {
	e := nuevoEntornoEmision()
	e.clientes.clientes["cli-1"] = &entity.Cliente{ID: "cli-1", EmpresaID: "emp-1", Nombre: "Distribuidora XYZ"}
	original := ventaBase()
	original.TipoDTE = entity.TipoDTEComprobante
	original.EstadoDTE = entity.EstadoDTEAceptadoMH
	e.sembrarVenta(original)

	nota := ventaBase()
	nota.TipoDTE = entity.TipoDTENotaCredito
	nota.ClienteID = "cli-1"
	nota.VentaRelacionadaID = original.ID
	e.sembrarVenta(nota)

	require.NoError(t, e.emisor.EmitirVenta(context.Background(), nota.ID))

	doc, ok := e.gen.ultimoDoc.(*builder.VentaDTE)
	require.True(t, ok)
	require.NotNil(t, doc.Cliente)
	assert.Equal(t, "Distribuidora XYZ", doc.Cliente.Nombre)
	require.NotNil(t, doc.Relacionada)
	assert.Equal(t, original.ID, doc.Relacionada.ID)
}

func TestEmitirVentaErrorDeEsquema(t *testing.T) {
	e := nuevoEntornoEmision()
	e.gen.err = &domain.ErrorEsquema{Restriccion: "el receptor de CCF debe tener NRC"}
	venta := e.sembrarVenta(ventaBase())

	err := e.emisor.EmitirVenta(context.Background(), venta.ID)
	var esq *domain.ErrorEsquema
	require.ErrorAs(t, err, &esq)
	assert.True(t, domain.EsPermanente(err))
	assert.Empty(t, e.transmisor.envios)
}
