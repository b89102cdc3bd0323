package dto

import (
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// CreateEmpresaRequest alta de un emisor. Incluye las credenciales de MH y
// la ruta del certificado; esos campos nunca vuelven en las respuestas.
type CreateEmpresaRequest struct {
	Nombre             string `json:"nombre"`
	NombreComercial    string `json:"nombre_comercial"`
	NIT                string `json:"nit"`
	NRC                string `json:"nrc"`
	CodActividad       string `json:"cod_actividad"`
	DescActividad      string `json:"desc_actividad"`
	Direccion          string `json:"direccion"`
	Departamento       string `json:"departamento"`
	Municipio          string `json:"municipio"`
	Telefono           string `json:"telefono"`
	Correo             string `json:"correo"`
	Ambiente           string `json:"ambiente"` // 00 producción | 01 pruebas
	CodEstablecimiento string `json:"cod_establecimiento"`
	CodPuntoVenta      string `json:"cod_punto_venta"`
	UserAPIMH          string `json:"user_api_mh"`
	ClaveAPIMH         string `json:"clave_api_mh"`
	ArchivoCertificado string `json:"archivo_certificado"`
	ClaveCertificado   string `json:"clave_certificado"`
}

// AEmpresa convierte la petición en la entidad.
func (r CreateEmpresaRequest) AEmpresa() *entity.Empresa {
	return &entity.Empresa{
		Nombre:             r.Nombre,
		NombreComercial:    r.NombreComercial,
		NIT:                r.NIT,
		NRC:                r.NRC,
		CodActividad:       r.CodActividad,
		DescActividad:      r.DescActividad,
		Direccion:          r.Direccion,
		Departamento:       r.Departamento,
		Municipio:          r.Municipio,
		Telefono:           r.Telefono,
		Correo:             r.Correo,
		Ambiente:           r.Ambiente,
		CodEstablecimiento: r.CodEstablecimiento,
		CodPuntoVenta:      r.CodPuntoVenta,
		UserAPIMH:          r.UserAPIMH,
		ClaveAPIMH:         r.ClaveAPIMH,
		ArchivoCertificado: r.ArchivoCertificado,
		ClaveCertificado:   r.ClaveCertificado,
	}
}

// EmpresaResponse emisor sin credenciales ni contraseñas.
type EmpresaResponse struct {
	ID                 string    `json:"id"`
	Nombre             string    `json:"nombre"`
	NombreComercial    string    `json:"nombre_comercial,omitempty"`
	NIT                string    `json:"nit"`
	NRC                string    `json:"nrc,omitempty"`
	CodActividad       string    `json:"cod_actividad,omitempty"`
	DescActividad      string    `json:"desc_actividad,omitempty"`
	Direccion          string    `json:"direccion,omitempty"`
	Departamento       string    `json:"departamento,omitempty"`
	Municipio          string    `json:"municipio,omitempty"`
	Telefono           string    `json:"telefono,omitempty"`
	Correo             string    `json:"correo,omitempty"`
	Ambiente           string    `json:"ambiente"`
	CodEstablecimiento string    `json:"cod_establecimiento,omitempty"`
	CodPuntoVenta      string    `json:"cod_punto_venta,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DesdeEmpresa arma la respuesta pública del emisor.
func DesdeEmpresa(e *entity.Empresa) EmpresaResponse {
	return EmpresaResponse{
		ID:                 e.ID,
		Nombre:             e.Nombre,
		NombreComercial:    e.NombreComercial,
		NIT:                e.NIT,
		NRC:                e.NRC,
		CodActividad:       e.CodActividad,
		DescActividad:      e.DescActividad,
		Direccion:          e.Direccion,
		Departamento:       e.Departamento,
		Municipio:          e.Municipio,
		Telefono:           e.Telefono,
		Correo:             e.Correo,
		Ambiente:           e.Ambiente,
		CodEstablecimiento: e.CodEstablecimiento,
		CodPuntoVenta:      e.CodPuntoVenta,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}
