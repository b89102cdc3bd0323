package dto

import (
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// CreateClienteRequest alta de un receptor.
type CreateClienteRequest struct {
	Nombre        string `json:"nombre"`
	NRC           string `json:"nrc"`
	NIT           string `json:"nit"`
	DUI           string `json:"dui"`
	CodActividad  string `json:"cod_actividad"`
	DescActividad string `json:"desc_actividad"`
	Giro          string `json:"giro"`
	Direccion     string `json:"direccion"`
	Departamento  string `json:"departamento"`
	Municipio     string `json:"municipio"`
	Telefono      string `json:"telefono"`
	Correo        string `json:"correo"`
}

// ACliente convierte la petición en la entidad, atada a la empresa.
func (r CreateClienteRequest) ACliente(empresaID string) *entity.Cliente {
	return &entity.Cliente{
		EmpresaID:     empresaID,
		Nombre:        r.Nombre,
		NRC:           r.NRC,
		NIT:           r.NIT,
		DUI:           r.DUI,
		CodActividad:  r.CodActividad,
		DescActividad: r.DescActividad,
		Giro:          r.Giro,
		Direccion:     r.Direccion,
		Departamento:  r.Departamento,
		Municipio:     r.Municipio,
		Telefono:      r.Telefono,
		Correo:        r.Correo,
	}
}

// ClienteResponse receptor registrado.
type ClienteResponse struct {
	ID            string    `json:"id"`
	EmpresaID     string    `json:"empresa_id"`
	Nombre        string    `json:"nombre"`
	NRC           string    `json:"nrc,omitempty"`
	NIT           string    `json:"nit,omitempty"`
	DUI           string    `json:"dui,omitempty"`
	CodActividad  string    `json:"cod_actividad,omitempty"`
	DescActividad string    `json:"desc_actividad,omitempty"`
	Giro          string    `json:"giro,omitempty"`
	Direccion     string    `json:"direccion,omitempty"`
	Departamento  string    `json:"departamento,omitempty"`
	Municipio     string    `json:"municipio,omitempty"`
	Telefono      string    `json:"telefono,omitempty"`
	Correo        string    `json:"correo,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DesdeCliente arma la respuesta del receptor.
func DesdeCliente(c *entity.Cliente) ClienteResponse {
	return ClienteResponse{
		ID:            c.ID,
		EmpresaID:     c.EmpresaID,
		Nombre:        c.Nombre,
		NRC:           c.NRC,
		NIT:           c.NIT,
		DUI:           c.DUI,
		CodActividad:  c.CodActividad,
		DescActividad: c.DescActividad,
		Giro:          c.Giro,
		Direccion:     c.Direccion,
		Departamento:  c.Departamento,
		Municipio:     c.Municipio,
		Telefono:      c.Telefono,
		Correo:        c.Correo,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
