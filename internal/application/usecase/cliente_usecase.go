package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// ClienteUseCase aplica reglas de negocio para receptores, siempre
// acotados a la empresa del token.
type ClienteUseCase struct {
	repo repository.ClienteRepository
}

// NewClienteUseCase construye el caso de uso con el puerto de persistencia.
func NewClienteUseCase(repo repository.ClienteRepository) *ClienteUseCase {
	return &ClienteUseCase{repo: repo}
}

// Create registra un receptor para la empresa.
func (uc *ClienteUseCase) Create(ctx context.Context, empresaID string, in dto.CreateClienteRequest) (*dto.ClienteResponse, error) {
	if in.Nombre == "" {
		return nil, fmt.Errorf("%w: nombre es requerido", domain.ErrInvalidInput)
	}
	cliente := in.ACliente(empresaID)
	if err := uc.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	out := dto.DesdeCliente(cliente)
	return &out, nil
}

// GetByID obtiene un receptor de la empresa.
func (uc *ClienteUseCase) GetByID(ctx context.Context, empresaID, id string) (*dto.ClienteResponse, error) {
	cliente, err := uc.repo.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	out := dto.DesdeCliente(cliente)
	return &out, nil
}

// List lista los receptores de la empresa con paginación.
func (uc *ClienteUseCase) List(ctx context.Context, empresaID string, limit, offset int) ([]dto.ClienteResponse, error) {
	list, err := uc.repo.ListByEmpresa(ctx, empresaID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClienteResponse, 0, len(list))
	for _, c := range list {
		items = append(items, dto.DesdeCliente(c))
	}
	return items, nil
}
