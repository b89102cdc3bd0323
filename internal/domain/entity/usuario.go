package entity

import "time"

// Roles de usuario de la API.
const (
	RolAdmin      = "admin"
	RolFacturador = "facturador"
)

// Usuario es una cuenta de acceso a la API.
type Usuario struct {
	ID           string
	EmpresaID    string
	Nombre       string
	Email        string
	PasswordHash string // bcrypt
	Rol          string
	Activo       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
