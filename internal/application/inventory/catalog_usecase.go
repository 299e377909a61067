package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CatalogUseCase alta y consulta de bodegas y artículos.
type CatalogUseCase struct {
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(warehouses repository.WarehouseRepository, items repository.ItemRepository) *CatalogUseCase {
	return &CatalogUseCase{warehouses: warehouses, items: items}
}

// CreateWarehouse crea una bodega. El código es único.
func (uc *CatalogUseCase) CreateWarehouse(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	code, name := strings.TrimSpace(in.Code), strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son requeridos", domain.ErrInvalidInput)
	}
	if len(code) > 20 {
		return nil, fmt.Errorf("%w: code admite máximo 20 caracteres", domain.ErrInvalidInput)
	}
	warehouse := &entity.Warehouse{Code: code, Name: name, Address: strings.TrimSpace(in.Address)}
	if err := uc.warehouses.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetWarehouse obtiene una bodega por ID.
func (uc *CatalogUseCase) GetWarehouse(ctx context.Context, id int64) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, &domain.NotFoundError{Resource: "bodega", ID: id}
	}
	return toWarehouseResponse(warehouse), nil
}

// ListWarehouses lista bodegas con paginación.
func (uc *CatalogUseCase) ListWarehouses(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	list, err := uc.warehouses.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		out = append(out, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CreateItem crea un artículo. El precio se guarda con 2 decimales.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	code, name := strings.TrimSpace(in.Code), strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son requeridos", domain.ErrInvalidInput)
	}
	if len(code) > 40 {
		return nil, fmt.Errorf("%w: code admite máximo 40 caracteres", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.Price.Round(2).GreaterThan(entity.MaxAmount) {
		return nil, fmt.Errorf("%w: price excede %s", domain.ErrInvalidInput, entity.MaxAmount)
	}
	item := &entity.Item{Code: code, Name: name, Price: in.Price.Round(2)}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetItem obtiene un artículo por ID.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id int64) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.NotFoundError{Resource: "artículo", ID: id}
	}
	return toItemResponse(item), nil
}

// ListItems lista artículos con paginación.
func (uc *CatalogUseCase) ListItems(ctx context.Context, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.items.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:        it.ID,
		Code:      it.Code,
		Name:      it.Name,
		Price:     it.Price,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}
