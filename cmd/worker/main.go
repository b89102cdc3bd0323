package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Facturacion-api/internal/application/facturacion"
	"github.com/jhoicas/Facturacion-api/internal/dte/builder"
	"github.com/jhoicas/Facturacion-api/internal/dte/firmador"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/mh"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// El worker drena las tareas de facturación: construye, firma y transmite los
// DTE encolados por la API y procesa las invalidaciones.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Bool("loop", cfg.Worker.Loop).
		Int("lote", cfg.Worker.BatchLimit).
		Msg("iniciando worker de facturación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	empresaRepo := postgres.NewEmpresaRepository(pool)
	clienteRepo := postgres.NewClienteRepository(pool)
	ventaRepo := postgres.NewVentaRepository(pool)
	tareaRepo := postgres.NewTareaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	correlativos := facturacion.NewServicioCorrelativos(txRunner, log)
	generador := builder.New(correlativos)
	firma := firmador.New(log.Componente("firmador"))
	transmisor := mh.New(cfg.MH, log.Componente("mh"))

	emisor := facturacion.NewEmisor(
		empresaRepo, clienteRepo, ventaRepo,
		generador, firma, transmisor, log,
	)
	procesador := facturacion.NewProcesador(tareaRepo, emisor, cfg.Worker, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("señal de apagado recibida, deteniendo worker...")
		cancel()
	}()

	if err := procesador.Ejecutar(ctx); err != nil {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
