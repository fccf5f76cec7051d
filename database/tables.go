package database

import "restaurant-pos/models"

func (s *Store) ListTables(status models.TableStatus) ([]models.Table, error) {
	var tables []models.Table
	q := s.db.Order("number ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *Store) GetTable(id string) (*models.Table, error) {
	var table models.Table
	if err := first(s.db.Where("id = ?", id), &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Store) TableByNumber(number string) (*models.Table, error) {
	var table models.Table
	if err := first(s.db.Where("number = ?", number), &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Store) CreateTable(table *models.Table) error {
	return translate(s.db.Create(table).Error)
}

// SaveTable writes every column of table, including a cleared CurrentOrderID.
func (s *Store) SaveTable(table *models.Table) error {
	return translate(s.db.Select("*").Updates(table).Error)
}
