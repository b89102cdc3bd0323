package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// EmpresaUseCase aplica reglas de negocio para emisores.
type EmpresaUseCase struct {
	repo repository.EmpresaRepository
}

// NewEmpresaUseCase construye el caso de uso con el puerto de persistencia.
func NewEmpresaUseCase(repo repository.EmpresaRepository) *EmpresaUseCase {
	return &EmpresaUseCase{repo: repo}
}

// Create registra un emisor. Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *EmpresaUseCase) Create(ctx context.Context, in dto.CreateEmpresaRequest) (*dto.EmpresaResponse, error) {
	if in.Nombre == "" || in.NIT == "" {
		return nil, fmt.Errorf("%w: nombre y nit son requeridos", domain.ErrInvalidInput)
	}
	empresa := in.AEmpresa()
	switch empresa.Ambiente {
	case entity.AmbienteProduccion, entity.AmbientePruebas:
	case "":
		empresa.Ambiente = entity.AmbientePruebas
	default:
		return nil, fmt.Errorf("%w: ambiente debe ser 00 o 01", domain.ErrInvalidInput)
	}
	if err := uc.repo.Create(ctx, empresa); err != nil {
		return nil, err
	}
	out := dto.DesdeEmpresa(empresa)
	return &out, nil
}

// GetByID obtiene un emisor por ID.
func (uc *EmpresaUseCase) GetByID(ctx context.Context, id string) (*dto.EmpresaResponse, error) {
	empresa, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.DesdeEmpresa(empresa)
	return &out, nil
}

// List lista emisores con paginación.
func (uc *EmpresaUseCase) List(ctx context.Context, limit, offset int) ([]dto.EmpresaResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EmpresaResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.DesdeEmpresa(e))
	}
	return items, nil
}
