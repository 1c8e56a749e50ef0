package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/types"
)

var (
	ErrNameRequired      = errors.New("name is required")
	ErrContainerRequired = errors.New("containerId is required")
	ErrContainerNotFound = errors.New("container does not exist")
	ErrCategoryNotFound  = errors.New("category does not exist")
)

var itemColumns = []string{
	"name", "value", "category_id", "size", "quantity", "information", "photo",
	"container_id", "position_row", "position_column", "updated_at",
}

// Repository persists items. Create and Update reject records whose required
// fields are missing or whose container or category does not exist.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Item, error)
	ListByContainer(ctx context.Context, containerID int64) ([]models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	FindAtPosition(ctx context.Context, containerID int64, pos types.Position) (*models.Item, error)
	OccupiedCells(ctx context.Context, containerID int64) ([]types.Position, error)
	FindContainer(ctx context.Context, id int64) (*models.Container, error)
	ContainerNames(ctx context.Context, ids []int64) (map[int64]string, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, query string, fields []SearchField) ([]models.Item, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Item, error) {
	var rows []models.Item
	if err := r.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByContainer(ctx context.Context, containerID int64) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("container_id = ?", containerID).
		Order("position_row ASC").Order("position_column ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAtPosition returns the occupant of a cell, preferring the oldest item
// when several share it. gorm.ErrRecordNotFound means the cell is free.
func (r *repository) FindAtPosition(ctx context.Context, containerID int64, pos types.Position) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Where("container_id = ? AND position_row = ? AND position_column = ?", containerID, pos.Row, pos.Column).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) OccupiedCells(ctx context.Context, containerID int64) ([]types.Position, error) {
	var rows []struct {
		PositionRow    int
		PositionColumn int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Distinct("position_row", "position_column").
		Where("container_id = ?", containerID).
		Order("position_row ASC").Order("position_column ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	cells := make([]types.Position, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, types.Position{Row: row.PositionRow, Column: row.PositionColumn})
	}
	return cells, nil
}

func (r *repository) FindContainer(ctx context.Context, id int64) (*models.Container, error) {
	var container models.Container
	if err := r.db.WithContext(ctx).First(&container, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &container, nil
}

func (r *repository) ContainerNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []models.Container
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.checkItem(ctx, item); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes every mutable column, so callers merge partial input first.
func (r *repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.checkItem(ctx, item); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(item).Select(itemColumns).Updates(item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Search matches any of the fields case-insensitively as a substring, ordered
// by id so repeated calls are stable.
func (r *repository) Search(ctx context.Context, query string, fields []SearchField) ([]models.Item, error) {
	if len(fields) == 0 {
		return []models.Item{}, nil
	}
	if r.db.Dialector != nil && r.db.Dialector.Name() == "sqlite" {
		return r.searchFolded(ctx, query, fields)
	}
	pattern := "%" + escapeLike(query) + "%"
	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		conds = append(conds, fmt.Sprintf("LOWER(items.%s) LIKE LOWER(?) ESCAPE '\\'", field.column()))
		args = append(args, pattern)
	}

	var rows []models.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where(strings.Join(conds, " OR "), args...).
		Order("items.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// searchFolded matches in Go with Unicode case folding; sqlite's LOWER only
// folds ASCII letters.
func (r *repository) searchFolded(ctx context.Context, query string, fields []SearchField) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("items.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := make([]models.Item, 0, len(rows))
	for _, item := range rows {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field.valueOf(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func (r *repository) checkItem(ctx context.Context, item *models.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if item.ContainerID <= 0 {
		return ErrContainerRequired
	}
	if err := item.Position.Validate(); err != nil {
		return err
	}
	if err := r.exists(ctx, &models.Container{}, item.ContainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrContainerNotFound, item.ContainerID)
		}
		return err
	}
	if item.CategoryID != nil {
		if err := r.exists(ctx, &models.Category{}, *item.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrCategoryNotFound, *item.CategoryID)
			}
			return err
		}
	}
	return nil
}

func (r *repository) exists(ctx context.Context, model any, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
