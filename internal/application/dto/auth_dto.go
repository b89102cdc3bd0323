package dto

import "time"

// RegisterRequest alta de un usuario de la API.
type RegisterRequest struct {
	EmpresaID string `json:"empresa_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"` // admin | facturador; por defecto facturador
}

// LoginRequest credenciales de inicio de sesión.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UsuarioResponse usuario sin hash de contraseña.
type UsuarioResponse struct {
	ID        string    `json:"id"`
	EmpresaID string    `json:"empresa_id"`
	Email     string    `json:"email"`
	Nombre    string    `json:"nombre"`
	Rol       string    `json:"rol"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse token JWT más el usuario autenticado.
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario UsuarioResponse `json:"usuario"`
}
