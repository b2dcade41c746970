package repository

import (
	"database/sql"
	"fmt"

	"github.com/coralbank/account-service/internal/models"
)

// UserRepository resolves account users. Users are created and removed by
// the user service; this service only ever reads them.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user, or ErrUserNotFound when absent.
func (r *UserRepository) FindByID(id int64) (*models.AccountUser, error) {
	query := `SELECT id, name FROM users WHERE id = $1`
	var user models.AccountUser
	err := r.db.QueryRow(query, id).Scan(&user.ID, &user.Name)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
