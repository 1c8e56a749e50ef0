package sizeoptions

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.SizeOption, error)
	FindByID(ctx context.Context, id int64) (*models.SizeOption, error)
	FindByName(ctx context.Context, name string) (*models.SizeOption, error)
	Create(ctx context.Context, option *models.SizeOption) (*models.SizeOption, error)
	Update(ctx context.Context, option *models.SizeOption) (*models.SizeOption, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// List returns options by ascending sort order, ties broken by insertion order.
func (r *repository) List(ctx context.Context) ([]models.SizeOption, error) {
	var rows []models.SizeOption
	if err := r.db.WithContext(ctx).Order("sort_order ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.SizeOption, error) {
	var option models.SizeOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.SizeOption, error) {
	var option models.SizeOption
	if err := r.db.WithContext(ctx).First(&option, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *repository) Create(ctx context.Context, option *models.SizeOption) (*models.SizeOption, error) {
	if err := r.db.WithContext(ctx).Select("name", "label", "sort_order").Create(option).Error; err != nil {
		return nil, err
	}
	return option, nil
}

func (r *repository) Update(ctx context.Context, option *models.SizeOption) (*models.SizeOption, error) {
	res := r.db.WithContext(ctx).
		Model(option).
		Select("name", "label", "sort_order").
		Updates(option)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return option, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.SizeOption{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
