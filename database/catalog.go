package database

import (
	"fmt"
	"strings"

	"restaurant-pos/models"
)

func (s *Store) ListCategories(activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := s.db.Order("sort_order ASC, name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetCategory(id string) (*models.Category, error) {
	var category models.Category
	if err := first(s.db.Where("id = ?", id), &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) CreateCategory(category *models.Category) error {
	return translate(s.db.Create(category).Error)
}

// UpdateCategory applies a column->value patch and returns the fresh row.
func (s *Store) UpdateCategory(id string, updates map[string]any) (*models.Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := translate(s.db.Model(category).Updates(updates).Error); err != nil {
			return nil, err
		}
	}
	return s.GetCategory(id)
}

// DeleteCategory refuses while any menu item still references the category;
// deactivate it instead.
func (s *Store) DeleteCategory(id string) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	var n int64
	if err := s.db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category still has %d menu items", ErrConflict, n)
	}
	return translate(s.db.Delete(&models.Category{}, "id = ?", id).Error)
}

// MenuFilter narrows ListMenuItems. Zero values mean no filter.
type MenuFilter struct {
	CategoryID    string
	ItemType      models.ItemType
	AvailableOnly bool
	Search        string
}

func (s *Store) ListMenuItems(f MenuFilter) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := s.db.Order("sort_order ASC, name ASC")
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.ItemType != "" {
		q = q.Where("item_type = ?", f.ItemType)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetMenuItem is the catalog read used when adding order lines.
func (s *Store) GetMenuItem(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := first(s.db.Where("id = ?", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateMenuItem(item *models.MenuItem) error {
	if _, err := s.GetCategory(item.CategoryID); err != nil {
		return fmt.Errorf("category %s: %w", item.CategoryID, err)
	}
	return translate(s.db.Create(item).Error)
}

func (s *Store) UpdateMenuItem(id string, updates map[string]any) (*models.MenuItem, error) {
	item, err := s.GetMenuItem(id)
	if err != nil {
		return nil, err
	}
	if cat, ok := updates["category_id"].(string); ok {
		if _, err := s.GetCategory(cat); err != nil {
			return nil, fmt.Errorf("category %s: %w", cat, err)
		}
	}
	if len(updates) > 0 {
		if err := translate(s.db.Model(item).Updates(updates).Error); err != nil {
			return nil, err
		}
	}
	return s.GetMenuItem(id)
}

// SetMenuItemAvailability toggles the soft-disable flag.
func (s *Store) SetMenuItemAvailability(id string, available bool) (*models.MenuItem, error) {
	return s.UpdateMenuItem(id, map[string]any{"is_available": available})
}
