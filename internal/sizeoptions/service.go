package sizeoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
)

type Service interface {
	List(ctx context.Context) ([]SizeOptionDTO, error)
	Get(ctx context.Context, id int64) (SizeOptionDTO, error)
	Create(ctx context.Context, input CreateSizeOptionInput) (SizeOptionDTO, error)
	Update(ctx context.Context, id int64, input UpdateSizeOptionInput) (SizeOptionDTO, error)
	Delete(ctx context.Context, id int64) error
	// EnsureDefaults creates any of the provided options whose name is not
	// taken yet and reports how many were inserted.
	EnsureDefaults(ctx context.Context, defaults []CreateSizeOptionInput) (int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("size options repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]SizeOptionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list size options")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id int64) (SizeOptionDTO, error) {
	option, err := s.load(ctx, id)
	if err != nil {
		return SizeOptionDTO{}, err
	}
	return FromModel(*option), nil
}

func (s *service) Create(ctx context.Context, input CreateSizeOptionInput) (SizeOptionDTO, error) {
	details := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "is required"
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		details["label"] = "is required"
	}
	if len(details) > 0 {
		return SizeOptionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	option := &models.SizeOption{Name: name, Label: label}
	if input.SortOrder != nil {
		option.SortOrder = *input.SortOrder
	}
	created, err := s.repo.Create(ctx, option)
	if err != nil {
		return SizeOptionDTO{}, writeError(err, "create size option")
	}
	return FromModel(*created), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateSizeOptionInput) (SizeOptionDTO, error) {
	option, err := s.load(ctx, id)
	if err != nil {
		return SizeOptionDTO{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return SizeOptionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"name": "is required"})
		}
		option.Name = name
	}
	if input.Label != nil {
		label := strings.TrimSpace(*input.Label)
		if label == "" {
			return SizeOptionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"label": "is required"})
		}
		option.Label = label
	}
	if input.SortOrder != nil {
		option.SortOrder = *input.SortOrder
	}

	updated, err := s.repo.Update(ctx, option)
	if err != nil {
		return SizeOptionDTO{}, writeError(err, "update size option")
	}
	return FromModel(*updated), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "size option id must be positive")
	}
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete size option")
	}
	if !existed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "size option not found")
	}
	return nil
}

func (s *service) EnsureDefaults(ctx context.Context, defaults []CreateSizeOptionInput) (int, error) {
	created := 0
	for _, input := range defaults {
		_, err := s.repo.FindByName(ctx, strings.TrimSpace(input.Name))
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size option")
		}
		if _, err := s.Create(ctx, input); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.SizeOption, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size option id must be positive")
	}
	option, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "size option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size option")
	}
	return option, nil
}

func writeError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "size option not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "size option name already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
