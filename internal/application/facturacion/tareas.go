package facturacion

import (
	"context"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// EjecutorVentas es lo que el procesador invoca por cada tarea reclamada.
// Emisor lo implementa; las pruebas inyectan un fake.
type EjecutorVentas interface {
	EmitirVenta(ctx context.Context, ventaID string) error
	InvalidarVenta(ctx context.Context, ventaID, motivo string) error
}

// esperaReintentos es la escalera de backoff entre intentos fallidos.
// Intentos posteriores al último escalón repiten la espera máxima.
var esperaReintentos = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	45 * time.Minute,
	120 * time.Minute,
}

// maxIntentos agota la tarea: la escalera completa más dos intentos a la
// espera máxima.
var maxIntentos = len(esperaReintentos) + 2

// Procesador barre la cola de tareas de facturación: reclama lotes con
// ClaimPendientes y despacha cada tarea a su ejecutor. Un error permanente
// termina la tarea; uno transitorio la reprograma con backoff.
type Procesador struct {
	tareas   repository.TareaRepository
	ejecutor EjecutorVentas
	log      *logger.Logger
	reloj    func() time.Time

	intervalo time.Duration
	lote      int
	lease     time.Duration
	loop      bool
}

// NewProcesador construye el procesador con los parámetros del worker.
func NewProcesador(tareas repository.TareaRepository, ejecutor EjecutorVentas, cfg config.WorkerConfig, log *logger.Logger) *Procesador {
	return &Procesador{
		tareas:    tareas,
		ejecutor:  ejecutor,
		log:       log,
		reloj:     time.Now,
		intervalo: time.Duration(cfg.IntervalSeconds) * time.Second,
		lote:      cfg.BatchLimit,
		lease:     time.Duration(cfg.LeaseMinutes) * time.Minute,
		loop:      cfg.Loop,
	}
}

// Ejecutar corre el procesador hasta que el contexto se cancele. En modo
// loop barre, espera el intervalo y repite; sin loop hace un solo barrido.
func (p *Procesador) Ejecutar(ctx context.Context) error {
	if !p.loop {
		_, err := p.Barrer(ctx)
		return err
	}
	ticker := time.NewTicker(p.intervalo)
	defer ticker.Stop()
	for {
		if n, err := p.Barrer(ctx); err != nil {
			p.log.Error().Err(err).Msg("barrido de tareas fallido")
		} else if n > 0 {
			p.log.Info().Int("procesadas", n).Msg("barrido de tareas completado")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Barrer reclama un lote de tareas elegibles y las procesa en orden.
// Devuelve cuántas tareas atendió.
func (p *Procesador) Barrer(ctx context.Context) (int, error) {
	ahora := p.reloj()
	tareas, err := p.tareas.ClaimPendientes(ctx, p.lote, p.lease, ahora)
	if err != nil {
		return 0, err
	}
	for _, t := range tareas {
		p.procesar(ctx, t)
	}
	return len(tareas), nil
}

func (p *Procesador) procesar(ctx context.Context, t *entity.TareaFacturacion) {
	var err error
	switch t.Tipo {
	case entity.TareaTipoEmision:
		err = p.ejecutor.EmitirVenta(ctx, t.VentaID)
	case entity.TareaTipoInvalidacion:
		err = p.ejecutor.InvalidarVenta(ctx, t.VentaID, t.MotivoAnulacion)
	default:
		err = &domain.ErrorEsquema{Restriccion: "tipo de tarea desconocido: " + t.Tipo}
	}

	if err == nil {
		t.Estado = entity.TareaCompletada
		t.ErrorMensaje = ""
		t.ProximoReintento = nil
		p.guardar(ctx, t)
		return
	}

	t.Intentos++
	t.ErrorMensaje = err.Error()
	if domain.EsPermanente(err) || t.Intentos >= maxIntentos {
		t.Estado = entity.TareaError
		t.ProximoReintento = nil
		p.log.Warn().
			Str("tarea_id", t.ID).
			Str("venta_id", t.VentaID).
			Int("intentos", t.Intentos).
			Err(err).
			Msg("tarea terminada con error")
	} else {
		t.Estado = entity.TareaPendiente
		proximo := p.reloj().Add(esperaTrasIntento(t.Intentos))
		t.ProximoReintento = &proximo
		p.log.Info().
			Str("tarea_id", t.ID).
			Int("intentos", t.Intentos).
			Time("proximo_reintento", proximo).
			Msg("tarea reprogramada")
	}
	p.guardar(ctx, t)
}

// esperaTrasIntento devuelve la espera tras el intento número n (1-based).
func esperaTrasIntento(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > len(esperaReintentos) {
		n = len(esperaReintentos)
	}
	return esperaReintentos[n-1]
}

func (p *Procesador) guardar(ctx context.Context, t *entity.TareaFacturacion) {
	if err := p.tareas.Update(ctx, t); err != nil {
		p.log.Error().Err(err).Str("tarea_id", t.ID).
			Msg("no se pudo persistir el resultado de la tarea")
	}
}
