package containers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
	"github.com/angelmondragon/gridstock/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes container management.
type Service interface {
	List(ctx context.Context) ([]ContainerDTO, error)
	Get(ctx context.Context, id int64) (ContainerDTO, error)
	Create(ctx context.Context, input CreateContainerInput) (ContainerDTO, error)
	Update(ctx context.Context, id int64, input UpdateContainerInput) (ContainerDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a container service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("containers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]ContainerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list containers")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id int64) (ContainerDTO, error) {
	container, err := s.load(ctx, s.repo, id)
	if err != nil {
		return ContainerDTO{}, err
	}
	return FromModel(*container), nil
}

func (s *service) Create(ctx context.Context, input CreateContainerInput) (ContainerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ContainerDTO{}, requiredField("name")
	}
	if err := validateGrid(input.GridConfig); err != nil {
		return ContainerDTO{}, err
	}

	container := &models.Container{
		Name:        name,
		Description: normalizeDescription(input.Description),
		GridConfig:  datatypes.NewJSONType(input.GridConfig),
	}
	created, err := s.repo.Create(ctx, container)
	if err != nil {
		return ContainerDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create container")
	}
	return FromModel(*created), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateContainerInput) (ContainerDTO, error) {
	container, err := s.load(ctx, s.repo, id)
	if err != nil {
		return ContainerDTO{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return ContainerDTO{}, requiredField("name")
		}
		container.Name = name
	}
	if input.Description != nil {
		container.Description = normalizeDescription(input.Description)
	}
	if input.GridConfig != nil {
		if err := validateGrid(*input.GridConfig); err != nil {
			return ContainerDTO{}, err
		}
		container.GridConfig = datatypes.NewJSONType(*input.GridConfig)
	}

	updated, err := s.repo.Update(ctx, container)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ContainerDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "container not found")
		}
		return ContainerDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update container")
	}
	return FromModel(*updated), nil
}

// Delete removes the container together with every item stored in it.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, id); err != nil {
			return err
		}
		if _, err := repo.DeleteItems(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete container items")
		}
		existed, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete container")
		}
		if !existed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, repo Repository, id int64) (*models.Container, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id must be positive")
	}
	container, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "container not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	return container, nil
}

func validateGrid(grid types.GridConfig) error {
	if err := grid.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid grid configuration").
			WithDetails(map[string]string{"gridConfig": err.Error()})
	}
	return nil
}

func requiredField(field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: "is required"})
}

func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
