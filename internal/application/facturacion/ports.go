// Package facturacion orquesta el ciclo de vida fiscal: asignación de
// correlativos, emisión (construir, firmar, transmitir), invalidación y el
// procesador de tareas con reintentos.
package facturacion

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción de base de datos.
// La implementación vive en infrastructure/postgres.
type TxRunner interface {
	// RunCorrelativo corre fn con el repositorio de correlativos atado a la
	// transacción; el candado FOR UPDATE dura hasta el commit.
	RunCorrelativo(ctx context.Context, fn func(repo repository.CorrelativoRepository) error) error

	// RunVenta corre fn con los repos de venta y tareas en una transacción,
	// para crear venta, detalles y tarea de emisión atómicamente.
	RunVenta(ctx context.Context, fn func(
		ventaRepo repository.VentaRepository,
		tareaRepo repository.TareaRepository,
	) error) error
}

// EnvioDTE es un documento firmado listo para transmitir a MH.
type EnvioDTE struct {
	Version          int // versión del esquema del DTE (1 o 3)
	TipoDTE          string
	CodigoGeneracion string
	Documento        string // JWS compacto
}

// EnvioEvento es un evento de invalidación firmado.
type EnvioEvento struct {
	TipoDTE          string
	CodigoGeneracion string // código del EVENTO, no del DTE anulado
	Documento        string // JWS compacto del evento
}

// TransmisorMH es el puerto hacia el API de transmisión de MH.
type TransmisorMH interface {
	EnviarDTE(ctx context.Context, empresa *entity.Empresa, envio EnvioDTE) (sello string, err error)
	InvalidarDTE(ctx context.Context, empresa *entity.Empresa, envio EnvioEvento) error
}

// FirmadorDTE firma un payload con el certificado de la empresa y devuelve
// el JWS compacto.
type FirmadorDTE interface {
	FirmarDTE(rutaCertificado, clave string, payload []byte) (string, error)
}
