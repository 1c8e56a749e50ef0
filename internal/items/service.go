package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
	"github.com/angelmondragon/gridstock/pkg/types"
)

const defaultQuantity = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes item management, grid occupancy and search.
type Service interface {
	List(ctx context.Context) ([]ItemDTO, error)
	Get(ctx context.Context, id int64) (ItemDTO, error)
	ListByContainer(ctx context.Context, containerID int64) ([]ItemDTO, error)
	Create(ctx context.Context, input CreateItemInput) (ItemDTO, error)
	Update(ctx context.Context, id int64, input UpdateItemInput) (ItemDTO, error)
	Delete(ctx context.Context, id int64) error
	Move(ctx context.Context, id int64, input MoveItemInput) (ItemDTO, error)
	ItemAt(ctx context.Context, containerID int64, pos types.Position) (*ItemDTO, error)
	OccupiedCells(ctx context.Context, containerID int64) ([]types.Position, error)
	Grid(ctx context.Context, containerID int64) (GridView, error)
	Search(ctx context.Context, query string, fields []SearchField) ([]SearchResultDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id int64) (ItemDTO, error) {
	item, err := s.load(ctx, s.repo, id)
	if err != nil {
		return ItemDTO{}, err
	}
	return FromModel(*item), nil
}

func (s *service) ListByContainer(ctx context.Context, containerID int64) ([]ItemDTO, error) {
	if _, err := s.loadContainer(ctx, s.repo, containerID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByContainer(ctx, containerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list container items")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ItemDTO{}, fieldError("name", "is required")
	}
	quantity := defaultQuantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 0 {
		return ItemDTO{}, fieldError("quantity", "must be at least 0")
	}

	item := &models.Item{
		Name:        name,
		Value:       ToDecimal(input.Value),
		CategoryID:  input.CategoryID,
		Size:        trimOptional(input.Size),
		Quantity:    quantity,
		Information: trimOptional(input.Information),
		Photo:       trimOptional(input.Photo),
		ContainerID: input.ContainerID,
		Position:    input.Position,
	}

	var out ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureCellFree(ctx, repo, item.ContainerID, item.Position, 0); err != nil {
			return err
		}
		if _, err := repo.Create(ctx, item); err != nil {
			return storeError(err, "create item")
		}
		created, err := s.load(ctx, repo, item.ID)
		if err != nil {
			return err
		}
		out = FromModel(*created)
		return nil
	})
	return out, err
}

func (s *service) Update(ctx context.Context, id int64, input UpdateItemInput) (ItemDTO, error) {
	var out ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		origContainer, origPos := item.ContainerID, item.Position

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return fieldError("name", "is required")
			}
			item.Name = name
		}
		if input.Value != nil {
			item.Value = ToDecimal(input.Value)
		}
		if input.CategoryID.Valid {
			item.CategoryID = input.CategoryID.Value
		}
		if input.Size != nil {
			item.Size = trimOptional(input.Size)
		}
		if input.Quantity != nil {
			if *input.Quantity < 0 {
				return fieldError("quantity", "must be at least 0")
			}
			item.Quantity = *input.Quantity
		}
		if input.Information != nil {
			item.Information = trimOptional(input.Information)
		}
		if input.Photo != nil {
			item.Photo = trimOptional(input.Photo)
		}
		if input.ContainerID != nil {
			item.ContainerID = *input.ContainerID
		}
		if input.Position != nil {
			item.Position = *input.Position
		}

		if item.ContainerID != origContainer || item.Position != origPos {
			if err := s.ensureCellFree(ctx, repo, item.ContainerID, item.Position, item.ID); err != nil {
				return err
			}
		}

		item.Category = nil
		if _, err := repo.Update(ctx, item); err != nil {
			return storeError(err, "update item")
		}
		updated, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		out = FromModel(*updated)
		return nil
	})
	return out, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id must be positive")
	}
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	if !existed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// Move relocates an item to a free cell, optionally in another container.
// Moving onto the item's own cell is a no-op; an occupied cell is a conflict.
func (s *service) Move(ctx context.Context, id int64, input MoveItemInput) (ItemDTO, error) {
	var out ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		targetContainer := item.ContainerID
		if input.ContainerID != nil {
			targetContainer = *input.ContainerID
		}
		if targetContainer == item.ContainerID && input.Position == item.Position {
			out = FromModel(*item)
			return nil
		}
		if err := s.ensureCellFree(ctx, repo, targetContainer, input.Position, item.ID); err != nil {
			return err
		}

		item.ContainerID = targetContainer
		item.Position = input.Position
		item.Category = nil
		if _, err := repo.Update(ctx, item); err != nil {
			return storeError(err, "move item")
		}
		moved, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		out = FromModel(*moved)
		return nil
	})
	return out, err
}

// ItemAt returns the occupant of a cell or nil when it is free.
func (s *service) ItemAt(ctx context.Context, containerID int64, pos types.Position) (*ItemDTO, error) {
	item, err := s.repo.FindAtPosition(ctx, containerID, pos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup cell")
	}
	dto := FromModel(*item)
	return &dto, nil
}

func (s *service) OccupiedCells(ctx context.Context, containerID int64) ([]types.Position, error) {
	if _, err := s.loadContainer(ctx, s.repo, containerID); err != nil {
		return nil, err
	}
	cells, err := s.repo.OccupiedCells(ctx, containerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list occupied cells")
	}
	return cells, nil
}

func (s *service) Grid(ctx context.Context, containerID int64) (GridView, error) {
	container, err := s.loadContainer(ctx, s.repo, containerID)
	if err != nil {
		return GridView{}, err
	}
	rows, err := s.repo.ListByContainer(ctx, containerID)
	if err != nil {
		return GridView{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list container items")
	}
	return renderGrid(*container, rows), nil
}

func (s *service) Search(ctx context.Context, query string, fields []SearchField) ([]SearchResultDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fieldError("q", "is required")
	}
	if len(fields) == 0 {
		fields = []SearchField{FieldName}
	}

	rows, err := s.repo.Search(ctx, query, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}

	ids := make([]int64, 0, len(rows))
	seen := map[int64]bool{}
	for _, row := range rows {
		if !seen[row.ContainerID] {
			seen[row.ContainerID] = true
			ids = append(ids, row.ContainerID)
		}
	}
	names, err := s.repo.ContainerNames(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container names")
	}

	results := make([]SearchResultDTO, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResultDTO{
			ItemDTO:       FromModel(row),
			ContainerName: names[row.ContainerID],
		})
	}
	return results, nil
}

func (s *service) ensureCellFree(ctx context.Context, repo Repository, containerID int64, pos types.Position, self int64) error {
	if err := pos.Validate(); err != nil {
		return fieldError("position", err.Error())
	}
	container, err := repo.FindContainer(ctx, containerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldError("containerId", "container not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	if !container.Grid().Contains(pos) {
		return fieldError("position", fmt.Sprintf("cell %s is outside the container grid", pos))
	}

	occupant, err := repo.FindAtPosition(ctx, containerID, pos)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup cell")
	case occupant.ID != self:
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("cell %s is occupied by item %d", pos, occupant.ID))
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, id int64) (*models.Item, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id must be positive")
	}
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) loadContainer(ctx context.Context, repo Repository, id int64) (*models.Container, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id must be positive")
	}
	container, err := repo.FindContainer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "container not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	return container, nil
}

// storeError maps repository rejections onto caller-facing errors.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
	case errors.Is(err, ErrNameRequired):
		return fieldError("name", "is required")
	case errors.Is(err, ErrContainerRequired), errors.Is(err, ErrContainerNotFound):
		return fieldError("containerId", err.Error())
	case errors.Is(err, ErrCategoryNotFound):
		return fieldError("categoryId", err.Error())
	case errors.Is(err, types.ErrNegativePosition):
		return fieldError("position", err.Error())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
