package containers

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db/models"
)

// Repository persists containers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Container, error)
	FindByID(ctx context.Context, id int64) (*models.Container, error)
	Create(ctx context.Context, container *models.Container) (*models.Container, error)
	Update(ctx context.Context, container *models.Container) (*models.Container, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteItems(ctx context.Context, containerID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a container repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Container, error) {
	var rows []models.Container
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID returns gorm.ErrRecordNotFound when the container does not exist.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.Container, error) {
	var container models.Container
	if err := r.db.WithContext(ctx).First(&container, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &container, nil
}

func (r *repository) Create(ctx context.Context, container *models.Container) (*models.Container, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(container).Error; err != nil {
		return nil, err
	}
	return container, nil
}

// Update writes every mutable column, so callers merge partial input first.
func (r *repository) Update(ctx context.Context, container *models.Container) (*models.Container, error) {
	res := r.db.WithContext(ctx).
		Model(container).
		Select("name", "description", "grid_config", "updated_at").
		Updates(container)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return container, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Container{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteItems(ctx context.Context, containerID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("container_id = ?", containerID).Delete(&models.Item{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
