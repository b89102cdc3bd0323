package facturacion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func servicioVentasPrueba() (*ServicioVentas, *ventaRepoFake, *tareaRepoFake) {
	ventas := nuevoVentaRepoFake()
	tareas := nuevoTareaRepoFake()
	s := NewServicioVentas(&txFake{ventas: ventas, tareas: tareas}, ventas, loggerPrueba())
	s.reloj = func() time.Time {
		return time.Date(2026, 8, 29, 16, 30, 0, 0, time.UTC)
	}
	return s, ventas, tareas
}

func ventaNueva() *entity.Venta {
	return &entity.Venta{
		EmpresaID: "emp-1",
		TipoDTE:   entity.TipoDTEFactura,
		Detalles: []entity.DetalleVenta{
			{Descripcion: "Producto A", Cantidad: decimal.NewFromInt(2), VentaGravada: decimal.NewFromInt(50)},
			{Descripcion: "Producto B", Cantidad: decimal.NewFromInt(1), VentaGravada: decimal.NewFromInt(13)},
		},
	}
}

func TestCrearVentaEncolaEmision(t *testing.T) {
	s, ventas, tareas := servicioVentasPrueba()

	venta := ventaNueva()
	tarea, err := s.CrearVenta(context.Background(), venta)
	require.NoError(t, err)
	require.NotEmpty(t, venta.ID)
	assert.Equal(t, entity.TareaTipoEmision, tarea.Tipo)
	assert.Equal(t, venta.ID, tarea.VentaID)
	assert.Equal(t, entity.CondicionContado, venta.CondicionOperacion)
	assert.False(t, venta.FechaEmision.IsZero())
	// totales agregados desde los detalles; en factura el IVA va incluido
	assert.True(t, venta.VentaGravada.Equal(decimal.NewFromInt(63)), venta.VentaGravada.String())
	assert.True(t, venta.DebitoFiscal.Equal(decimal.RequireFromString("7.25")), venta.DebitoFiscal.String())

	guardada, err := ventas.GetByID(context.Background(), venta.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoDTEBorrador, guardada.EstadoDTE)
	require.Len(t, guardada.Detalles, 2)
	assert.Equal(t, 1, guardada.Detalles[0].NumeroItem)
	assert.Equal(t, 2, guardada.Detalles[1].NumeroItem)

	encolada, err := tareas.GetByVenta(context.Background(), venta.ID, entity.TareaTipoEmision)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaPendiente, encolada.Estado)
}

func TestCrearVentaSinDetalles(t *testing.T) {
	s, _, _ := servicioVentasPrueba()
	venta := ventaNueva()
	venta.Detalles = nil

	_, err := s.CrearVenta(context.Background(), venta)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCrearNotaSinVentaRelacionada(t *testing.T) {
	s, _, _ := servicioVentasPrueba()
	venta := ventaNueva()
	venta.TipoDTE = entity.TipoDTENotaCredito

	_, err := s.CrearVenta(context.Background(), venta)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSolicitarInvalidacion(t *testing.T) {
	s, ventas, _ := servicioVentasPrueba()
	venta := ventaNueva()
	venta.Detalles = nil
	venta.EstadoDTE = entity.EstadoDTEAceptadoMH
	require.NoError(t, ventas.Create(context.Background(), venta))

	tarea, err := s.SolicitarInvalidacion(context.Background(), "emp-1", venta.ID, "precio equivocado")
	require.NoError(t, err)
	assert.Equal(t, entity.TareaTipoInvalidacion, tarea.Tipo)
	assert.Equal(t, "precio equivocado", tarea.MotivoAnulacion)
	assert.Equal(t, entity.TareaPendiente, tarea.Estado)
}

func TestSolicitarInvalidacionDeOtraEmpresa(t *testing.T) {
	s, ventas, _ := servicioVentasPrueba()
	venta := ventaNueva()
	venta.EstadoDTE = entity.EstadoDTEAceptadoMH
	require.NoError(t, ventas.Create(context.Background(), venta))

	_, err := s.SolicitarInvalidacion(context.Background(), "emp-2", venta.ID, "motivo")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSolicitarInvalidacionDeVentaNoAceptada(t *testing.T) {
	s, ventas, _ := servicioVentasPrueba()
	venta := ventaNueva()
	require.NoError(t, ventas.Create(context.Background(), venta))

	_, err := s.SolicitarInvalidacion(context.Background(), "emp-1", venta.ID, "motivo")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
