package facturacion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/pkg/config"
)

var inicioBarrido = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func procesadorPrueba(repo *tareaRepoFake, ejecutor *ejecutorFake) *Procesador {
	p := NewProcesador(repo, ejecutor, config.WorkerConfig{
		IntervalSeconds: 1,
		BatchLimit:      10,
		LeaseMinutes:    10,
		Loop:            false,
	}, loggerPrueba())
	p.reloj = func() time.Time { return inicioBarrido }
	return p
}

func tareaEmision(repo *tareaRepoFake, ventaID string) *entity.TareaFacturacion {
	t := &entity.TareaFacturacion{VentaID: ventaID, Tipo: entity.TareaTipoEmision}
	_ = repo.Create(context.Background(), t)
	return t
}

func TestBarrerCompletaTareaExitosa(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{}
	p := procesadorPrueba(repo, ejecutor)
	tarea := tareaEmision(repo, "venta-1")

	n, err := p.Barrer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"venta-1"}, ejecutor.emitidas)

	guardada, err := repo.GetByID(context.Background(), tarea.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaCompletada, guardada.Estado)
	assert.Empty(t, guardada.ErrorMensaje)
	assert.Nil(t, guardada.ProximoReintento)
}

func TestBarrerDespachaInvalidacionConMotivo(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{}
	p := procesadorPrueba(repo, ejecutor)
	_ = repo.Create(context.Background(), &entity.TareaFacturacion{
		VentaID:         "venta-9",
		Tipo:            entity.TareaTipoInvalidacion,
		MotivoAnulacion: "error en el monto",
	})

	_, err := p.Barrer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"venta-9"}, ejecutor.invalidadas)
	assert.Equal(t, []string{"error en el monto"}, ejecutor.motivos)
	assert.Empty(t, ejecutor.emitidas)
}

func TestBarrerReprogramaErrorTransitorio(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{errEmitir: fmt.Errorf("envío: %w", domain.ErrEnvioTransitorio)}
	p := procesadorPrueba(repo, ejecutor)
	tarea := tareaEmision(repo, "venta-1")

	_, err := p.Barrer(context.Background())
	require.NoError(t, err)

	guardada, err := repo.GetByID(context.Background(), tarea.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaPendiente, guardada.Estado)
	assert.Equal(t, 1, guardada.Intentos)
	assert.Contains(t, guardada.ErrorMensaje, "transitorio")
	require.NotNil(t, guardada.ProximoReintento)
	assert.Equal(t, inicioBarrido.Add(1*time.Minute), *guardada.ProximoReintento)
}

func TestErrorPermanenteTerminaLaTarea(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{errEmitir: &domain.RechazoMH{Codigo: "004", Descripcion: "rechazado"}}
	p := procesadorPrueba(repo, ejecutor)
	tarea := tareaEmision(repo, "venta-1")

	_, err := p.Barrer(context.Background())
	require.NoError(t, err)

	guardada, err := repo.GetByID(context.Background(), tarea.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaError, guardada.Estado)
	assert.Equal(t, 1, guardada.Intentos)
	assert.Contains(t, guardada.ErrorMensaje, "rechazado")
	assert.Nil(t, guardada.ProximoReintento)
}

func TestAgotamientoDeIntentos(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{errEmitir: fmt.Errorf("envío: %w", domain.ErrEnvioTransitorio)}
	p := procesadorPrueba(repo, ejecutor)
	tarea := tareaEmision(repo, "venta-1")
	tarea.Intentos = maxIntentos - 1
	require.NoError(t, repo.Update(context.Background(), tarea))

	_, err := p.Barrer(context.Background())
	require.NoError(t, err)

	guardada, err := repo.GetByID(context.Background(), tarea.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaError, guardada.Estado)
	assert.Equal(t, maxIntentos, guardada.Intentos)
}

func TestEscaleraDeEsperas(t *testing.T) {
	esperadas := []time.Duration{
		1 * time.Minute, 5 * time.Minute, 15 * time.Minute,
		45 * time.Minute, 120 * time.Minute, 120 * time.Minute,
	}
	for intento, esperada := range esperadas {
		assert.Equal(t, esperada, esperaTrasIntento(intento+1), "intento %d", intento+1)
	}
}

func TestBarrerRespetaProximoReintento(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{}
	p := procesadorPrueba(repo, ejecutor)
	futuro := inicioBarrido.Add(30 * time.Minute)
	_ = repo.Create(context.Background(), &entity.TareaFacturacion{
		VentaID:          "venta-1",
		Tipo:             entity.TareaTipoEmision,
		ProximoReintento: &futuro,
	})

	n, err := p.Barrer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, ejecutor.emitidas)
}

func TestBarrerRescataTareaHuerfana(t *testing.T) {
	repo := nuevoTareaRepoFake()
	ejecutor := &ejecutorFake{}
	p := procesadorPrueba(repo, ejecutor)
	hace20 := inicioBarrido.Add(-20 * time.Minute)
	_ = repo.Create(context.Background(), &entity.TareaFacturacion{
		VentaID: "venta-1",
		Tipo:    entity.TareaTipoEmision,
	})
	huerfana := &entity.TareaFacturacion{
		ID:         "tarea-huerfana",
		VentaID:    "venta-2",
		Tipo:       entity.TareaTipoEmision,
		Estado:     entity.TareaProcesando,
		IniciadaAt: &hace20,
	}
	_ = repo.Create(context.Background(), huerfana)

	n, err := p.Barrer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"venta-1", "venta-2"}, ejecutor.emitidas)
}

func TestTipoDeTareaDesconocidoTermina(t *testing.T) {
	repo := nuevoTareaRepoFake()
	p := procesadorPrueba(repo, &ejecutorFake{})
	tarea := &entity.TareaFacturacion{VentaID: "venta-1", Tipo: "reimpresion"}
	_ = repo.Create(context.Background(), tarea)

	_, err := p.Barrer(context.Background())
	require.NoError(t, err)

	guardada, err := repo.GetByID(context.Background(), tarea.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TareaError, guardada.Estado)
}
