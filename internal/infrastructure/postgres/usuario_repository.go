package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación de UsuarioRepository (usable con pool o tx).
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

const selectUsuario = `
	SELECT id, empresa_id, email, password_hash, nombre, rol, activo, created_at, updated_at
	FROM usuarios`

// Create persiste un nuevo usuario.
func (r *UsuarioRepo) Create(ctx context.Context, u *entity.Usuario) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	query := `
		INSERT INTO usuarios (id, empresa_id, email, password_hash, nombre, rol, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.EmpresaID, strings.ToLower(u.Email), u.PasswordHash, u.Nombre, u.Rol, u.Activo,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// GetByEmail obtiene un usuario por email (case-insensitive).
func (r *UsuarioRepo) GetByEmail(ctx context.Context, email string) (*entity.Usuario, error) {
	var u entity.Usuario
	err := r.q.QueryRow(ctx, selectUsuario+` WHERE email = $1`, strings.ToLower(email)).Scan(
		&u.ID, &u.EmpresaID, &u.Email, &u.PasswordHash, &u.Nombre, &u.Rol, &u.Activo,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get usuario por email: %w", err)
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(ctx context.Context, id string) (*entity.Usuario, error) {
	var u entity.Usuario
	err := r.q.QueryRow(ctx, selectUsuario+` WHERE id = $1`, id).Scan(
		&u.ID, &u.EmpresaID, &u.Email, &u.PasswordHash, &u.Nombre, &u.Rol, &u.Activo,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	return &u, nil
}
