package repository

import (
	"database/sql"
	"fmt"

	"github.com/coralbank/account-service/internal/models"
	"github.com/lib/pq"
)

// AccountWriteRepository handles the command side: every read and write goes
// straight to the PostgreSQL write store (source of truth), never a cache —
// lifecycle decisions must see the current persisted state.
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

// Save upserts an account: a zero ID inserts and assigns the id, a non-zero
// ID updates the mutable columns. A unique violation on account_number is
// surfaced as ErrDuplicateAccountNumber so the caller can retry numbering.
func (r *AccountWriteRepository) Save(account *models.Account) (*models.Account, error) {
	if account.ID == 0 {
		return r.insert(account)
	}
	return r.update(account)
}

func (r *AccountWriteRepository) insert(account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, account_number, status, balance, registered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(query,
		account.UserID, account.AccountNumber, account.Status,
		account.Balance, account.RegisteredAt,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, models.ErrDuplicateAccountNumber
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (r *AccountWriteRepository) update(account *models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET status = $2, balance = $3, unregistered_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(query,
		account.ID, account.Status, account.Balance, account.UnregisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrAccountNotFound
	}
	return account, nil
}

// GetByAccountNumber fetches the current persisted state of an account for
// a lifecycle decision. The ownership/status/balance gates depend on this
// being a database read: a cached view could have gone stale under external
// balance mutations.
func (r *AccountWriteRepository) GetByAccountNumber(accountNumber string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_number = $1`, accountColumns)
	account, err := scanAccount(r.db.QueryRow(query, accountNumber))
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
