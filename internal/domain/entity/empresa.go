package entity

import "time"

// Ambientes MH. El código de la empresa elige el set de URLs; el DTE
// lleva el código invertido (convención confirmada contra el API de MH).
const (
	AmbienteProduccion = "00"
	AmbientePruebas    = "01"
)

// CodigoAmbienteDTE devuelve el código de ambiente que viaja dentro del DTE
// y del sobre de envío. MH usa la convención invertida respecto al código que
// selecciona las URLs: empresa en pruebas ('01') emite DTEs con ambiente '00'
// y viceversa (confirmado contra el API de MH).
func CodigoAmbienteDTE(ambiente string) string {
	if ambiente == AmbienteProduccion {
		return AmbientePruebas
	}
	return AmbienteProduccion
}

// Empresa representa un emisor registrado ante el Ministerio de Hacienda.
// Lleva sus propias credenciales de API y su certificado de firma.
type Empresa struct {
	ID                 string
	Nombre             string
	NombreComercial    string
	NIT                string
	NRC                string
	CodActividad       string
	DescActividad      string
	Direccion          string
	Departamento       string // código catálogo CAT-012
	Municipio          string // código catálogo CAT-013
	Telefono           string
	Correo             string
	Ambiente           string // AmbienteProduccion | AmbientePruebas
	CodEstablecimiento string // 4 caracteres, ej. "M001"
	CodPuntoVenta      string // 4 caracteres, ej. "P001"
	UserAPIMH          string // usuario del API de MH (normalmente el NIT)
	ClaveAPIMH         string // contraseña del API de MH
	ArchivoCertificado string // ruta al contenedor XML de credenciales (.crt)
	ClaveCertificado   string // contraseña de la llave privada (se compara vía SHA-512)
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
