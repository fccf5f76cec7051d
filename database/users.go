package database

import (
	"strings"

	"restaurant-pos/models"
)

func (s *Store) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := first(s.db.Where("username = ?", strings.ToLower(strings.TrimSpace(username))), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := first(s.db.Where("id = ?", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser stores usernames lower-cased so login is case-insensitive.
func (s *Store) CreateUser(user *models.User) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	return translate(s.db.Create(user).Error)
}

func (s *Store) UpdateUser(id string, updates map[string]any) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := translate(s.db.Model(user).Updates(updates).Error); err != nil {
			return nil, err
		}
	}
	return s.GetUser(id)
}
