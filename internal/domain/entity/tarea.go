package entity

import "time"

// Estados de una tarea de facturación.
const (
	TareaPendiente   = "Pendiente"
	TareaProcesando  = "Procesando"
	TareaCompletada  = "Completada"
	TareaError       = "Error"
)

// Tipos de tarea.
const (
	TareaTipoEmision      = "emision"
	TareaTipoInvalidacion = "invalidacion"
)

// TareaFacturacion es el registro de trabajo asíncrono que lleva una venta
// por el pipeline construir -> firmar -> enviar a MH, con reintentos.
type TareaFacturacion struct {
	ID              string
	VentaID         string
	Tipo            string // TareaTipoEmision | TareaTipoInvalidacion
	Estado          string
	Intentos        int
	ProximoReintento *time.Time // nil = elegible ya
	IniciadaAt      *time.Time // estampada al reclamar; base del lease
	ErrorMensaje    string
	MotivoAnulacion string // solo invalidación: motivo libre
	CreadaAt        time.Time
	ActualizadaAt   time.Time
}
