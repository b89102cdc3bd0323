package entity

import "time"

// Tipos de documento de identificación del receptor (catálogo CAT-022).
const (
	TipoDocNIT  = "36"
	TipoDocDUI  = "13"
	TipoDocOtro = "37"
)

// Cliente representa un receptor de documentos fiscales.
type Cliente struct {
	ID            string
	EmpresaID     string
	Nombre        string
	NRC           string // requerido para CCF (03); vacío para consumidor final
	NIT           string
	DUI           string
	CodActividad  string
	DescActividad string
	Giro          string
	Direccion     string
	Departamento  string
	Municipio     string
	Telefono      string
	Correo        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
