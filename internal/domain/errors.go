package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrConcurrencia: el generador de correlativos agotó sus reintentos
	// contra colisiones de unicidad.
	ErrConcurrencia = errors.New("conflicto de concurrencia al asignar número de control")

	// Credenciales de firma.
	ErrCertificadoFormato = errors.New("el archivo de credenciales no contiene una llave privada reconocible")
	ErrClaveIncorrecta    = errors.New("la contraseña del certificado no coincide")
	ErrLlaveNoCargable    = errors.New("la llave privada no pudo cargarse con ninguna estrategia")

	// ErrAutenticacionMH: MH rechazó las credenciales de API de la empresa.
	// Es permanente: reintentar no lo arregla.
	ErrAutenticacionMH = errors.New("autenticación contra MH fallida")

	// ErrEnvioTransitorio: red caída, timeout o 5xx de MH. Reintentable.
	ErrEnvioTransitorio = errors.New("error transitorio al contactar MH")
)

// ErrorEsquema indica que la venta no puede producir un DTE válido
// (receptor de CCF sin NRC, documento con dígitos fuera de regla, etc.).
// Permanente: la tarea no se reintenta.
type ErrorEsquema struct {
	Restriccion string // descripción de la regla violada
}

func (e *ErrorEsquema) Error() string {
	return fmt.Sprintf("esquema DTE: %s", e.Restriccion)
}

// RechazoMH es el rechazo de negocio devuelto por MH tras procesar el
// documento. Permanente: el documento quedó rechazado tal como se envió.
type RechazoMH struct {
	Codigo        string
	Descripcion   string
	Observaciones []string
}

func (e *RechazoMH) Error() string {
	msg := fmt.Sprintf("MH rechazó el documento [%s]: %s", e.Codigo, e.Descripcion)
	if len(e.Observaciones) > 0 {
		msg += " (" + strings.Join(e.Observaciones, "; ") + ")"
	}
	return msg
}

// EsPermanente clasifica un error del pipeline de facturación: true si
// reintentar con los mismos datos no puede cambiar el resultado.
func EsPermanente(err error) bool {
	var esq *ErrorEsquema
	var rech *RechazoMH
	switch {
	case errors.As(err, &esq), errors.As(err, &rech):
		return true
	case errors.Is(err, ErrAutenticacionMH),
		errors.Is(err, ErrCertificadoFormato),
		errors.Is(err, ErrClaveIncorrecta),
		errors.Is(err, ErrLlaveNoCargable),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound):
		return true
	}
	return false
}
