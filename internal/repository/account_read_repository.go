package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/coralbank/account-service/internal/models"
	sharedredis "github.com/coralbank/account-service/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const accountViewKeyPrefix = "account:view:"

// accountViewTTL bounds how stale a cached view can get under external
// balance mutations. The command side never reads through this cache.
const accountViewTTL = time.Minute

const accountColumns = `id, user_id, account_number, status, balance, registered_at, unregistered_at, created_at, updated_at`

// AccountReadRepository handles the query side. Hot single-account reads
// are fronted by a Redis cache keyed by id; PostgreSQL remains the source
// of truth and warms the cache on cold reads.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.Account]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.Account](redisClient, accountViewTTL),
	}
}

func accountViewKey(id int64) string {
	return accountViewKeyPrefix + strconv.FormatInt(id, 10)
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	var unregisteredAt sql.NullTime
	err := row.Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.Status,
		&account.Balance, &account.RegisteredAt, &unregisteredAt,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if unregisteredAt.Valid {
		account.UnregisteredAt = &unregisteredAt.Time
	}
	return &account, nil
}

// FindMostRecentlyCreated returns the account with the highest id — the
// last number handed out, by assignment order rather than timestamp.
// Returns (nil, nil) when no account exists yet.
func (r *AccountReadRepository) FindMostRecentlyCreated() (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts ORDER BY id DESC LIMIT 1`, accountColumns)
	account, err := scanAccount(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest account: %w", err)
	}
	return account, nil
}

// CountActiveByUserID counts the user's IN_USE accounts. Unregistered
// accounts do not count against the per-user cap.
func (r *AccountReadRepository) CountActiveByUserID(userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1 AND status = $2`
	var count int
	err := r.db.QueryRow(query, userID, models.StatusInUse).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// FindByID returns an account, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	if account, ok := r.cache.Get(ctx, accountViewKey(id)); ok {
		return account, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	account, err := scanAccount(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	// Warm the cache
	r.CacheAccount(ctx, account)
	return account, nil
}

// ListByUserID returns all of a user's accounts, closed ones included,
// ordered by id so repeated reads over unchanged data are stable.
func (r *AccountReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE user_id = $1 ORDER BY id`, accountColumns)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var unregisteredAt sql.NullTime
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.AccountNumber, &account.Status,
			&account.Balance, &account.RegisteredAt, &unregisteredAt,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if unregisteredAt.Valid {
			account.UnregisteredAt = &unregisteredAt.Time
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// CacheAccount stores or refreshes the Redis entry for an account.
// Called by the command service after opening to keep query reads warm.
func (r *AccountReadRepository) CacheAccount(ctx context.Context, account *models.Account) {
	r.cache.Set(ctx, accountViewKey(account.ID), account)
}

// InvalidateAccount drops the Redis entry for an account after a mutation;
// the next query read warms it from PostgreSQL.
func (r *AccountReadRepository) InvalidateAccount(ctx context.Context, id int64) {
	r.cache.Delete(ctx, accountViewKey(id))
}
