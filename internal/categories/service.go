package categories

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id int64) (CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error)
	Update(ctx context.Context, id int64, input UpdateCategoryInput) (CategoryDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id int64) (CategoryDTO, error) {
	category, err := s.load(ctx, s.repo, id)
	if err != nil {
		return CategoryDTO{}, err
	}
	return FromModel(*category), nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error) {
	details := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "is required"
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		details["color"] = "is required"
	}
	if len(details) > 0 {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	created, err := s.repo.Create(ctx, &models.Category{
		Name:  name,
		Color: color,
		Icon:  trimOptional(input.Icon),
	})
	if err != nil {
		return CategoryDTO{}, writeError(err, "create category")
	}
	return FromModel(*created), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateCategoryInput) (CategoryDTO, error) {
	category, err := s.load(ctx, s.repo, id)
	if err != nil {
		return CategoryDTO{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"name": "is required"})
		}
		category.Name = name
	}
	if input.Color != nil {
		color := strings.TrimSpace(*input.Color)
		if color == "" {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"color": "is required"})
		}
		category.Color = color
	}
	if input.Icon != nil {
		category.Icon = trimOptional(input.Icon)
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return CategoryDTO{}, writeError(err, "update category")
	}
	return FromModel(*updated), nil
}

// Delete removes the category and leaves its items uncategorized.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, id); err != nil {
			return err
		}
		if _, err := repo.DetachItems(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach category items")
		}
		existed, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		if !existed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, repo Repository, id int64) (*models.Category, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id must be positive")
	}
	category, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func writeError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category name already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
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
