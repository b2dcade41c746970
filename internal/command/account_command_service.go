package command

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/coralbank/account-service/internal/cqrs"
	"github.com/coralbank/account-service/internal/events"
	"github.com/coralbank/account-service/internal/models"
)

// maxActiveAccountsPerUser caps how many IN_USE accounts one user may hold.
const maxActiveAccountsPerUser = 5

// seedAccountNumber is the number assigned to the very first account.
// Every later number is its predecessor plus one at the same width.
const seedAccountNumber = "1000000000"

// UserDirectory resolves account users.
type UserDirectory interface {
	FindByID(id int64) (*models.AccountUser, error)
}

// AccountDirectory is the data-access boundary the command side writes
// through. FindMostRecentlyCreated orders by assignment (id), not timestamp.
// GetByAccountNumber must read the write store directly: the close gate
// decides on ownership, status and balance, and a cached view can be stale
// under external balance mutations.
type AccountDirectory interface {
	FindMostRecentlyCreated() (*models.Account, error)
	CountActiveByUserID(userID int64) (int, error)
	GetByAccountNumber(accountNumber string) (*models.Account, error)
	Save(account *models.Account) (*models.Account, error)
	CacheAccount(ctx context.Context, account *models.Account)
	InvalidateAccount(ctx context.Context, id int64)
}

// NumberingLock serialises the read-latest/increment/persist sequence across
// service instances. Without it, concurrent opens can compute the same next
// number; the unique constraint then rejects one of them with
// ErrDuplicateAccountNumber and that caller may retry. Lock returns the
// release bound to that acquisition, so concurrent holders never share
// token state.
type NumberingLock interface {
	Lock(ctx context.Context) (release func(context.Context) error, err error)
}

// EventPublisher emits domain events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService owns the account lifecycle: opening accounts with
// sequential numbers and soft-closing them once their balance is empty.
type AccountCommandService struct {
	users     UserDirectory
	accounts  AccountDirectory
	lock      NumberingLock
	publisher EventPublisher
}

func NewAccountCommandService(
	users UserDirectory,
	accounts AccountDirectory,
	lock NumberingLock,
	publisher EventPublisher,
) *AccountCommandService {
	return &AccountCommandService{
		users:     users,
		accounts:  accounts,
		lock:      lock,
		publisher: publisher,
	}
}

// OpenAccount creates an account for the user with the next sequential
// account number. Rule checks run before any write, so failures leave no
// trace.
func (s *AccountCommandService) OpenAccount(cmd cqrs.OpenAccountCommand) (*models.AccountSummary, error) {
	ctx := context.Background()

	user, err := s.users.FindByID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	count, err := s.accounts.CountActiveByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if count >= maxActiveAccountsPerUser {
		return nil, models.ErrMaxAccountsPerUser
	}

	release, err := s.lock.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise account numbering: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			log.Printf("Failed to release numbering lock: %v", err)
		}
	}()

	latest, err := s.accounts.FindMostRecentlyCreated()
	if err != nil {
		return nil, err
	}
	number, err := nextAccountNumber(latest)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:        user.ID,
		AccountNumber: number,
		Status:        models.StatusInUse,
		Balance:       cmd.InitialBalance,
		RegisteredAt:  time.Now().UTC(),
	}
	saved, err := s.accounts.Save(account)
	if err != nil {
		return nil, err
	}

	s.accounts.CacheAccount(ctx, saved)
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountOpened, events.AccountOpenedEvent{
		AccountNumber:  saved.AccountNumber,
		UserID:         saved.UserID,
		InitialBalance: saved.Balance,
		RegisteredAt:   saved.RegisteredAt,
	}); err != nil {
		log.Printf("Failed to publish account.opened event: %v", err)
	}

	return &models.AccountSummary{
		UserID:        saved.UserID,
		AccountNumber: saved.AccountNumber,
		RegisteredAt:  &saved.RegisteredAt,
	}, nil
}

// CloseAccount unregisters an account. The gate checks run in a fixed
// order — ownership, then state, then balance — and the first violation is
// the one reported.
func (s *AccountCommandService) CloseAccount(cmd cqrs.CloseAccountCommand) (*models.AccountSummary, error) {
	ctx := context.Background()

	user, err := s.users.FindByID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByAccountNumber(cmd.AccountNumber)
	if err != nil {
		return nil, err
	}

	if err := validateCloseAccount(user, account); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.Status = models.StatusUnregistered
	account.UnregisteredAt = &now

	saved, err := s.accounts.Save(account)
	if err != nil {
		return nil, err
	}

	s.accounts.InvalidateAccount(ctx, saved.ID)
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountUnregistered, events.AccountUnregisteredEvent{
		AccountNumber:  saved.AccountNumber,
		UserID:         saved.UserID,
		UnregisteredAt: now,
	}); err != nil {
		log.Printf("Failed to publish account.unregistered event: %v", err)
	}

	return &models.AccountSummary{
		UserID:         saved.UserID,
		AccountNumber:  saved.AccountNumber,
		UnregisteredAt: saved.UnregisteredAt,
	}, nil
}

// validateCloseAccount gates closure. Identity errors mask state errors,
// state errors mask balance errors.
func validateCloseAccount(user *models.AccountUser, account *models.Account) error {
	if account.UserID != user.ID {
		return models.ErrOwnerMismatch
	}
	if account.Status == models.StatusUnregistered {
		return models.ErrAccountAlreadyClosed
	}
	if account.Balance > 0 {
		return models.ErrBalanceNotEmpty
	}
	return nil
}

// nextAccountNumber computes the successor of the latest assigned number,
// keeping the fixed width, or the seed when no account exists yet.
func nextAccountNumber(latest *models.Account) (string, error) {
	if latest == nil {
		return seedAccountNumber, nil
	}
	n, err := strconv.ParseUint(latest.AccountNumber, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed account number %q: %w", latest.AccountNumber, err)
	}
	return fmt.Sprintf("%0*d", len(latest.AccountNumber), n+1), nil
}
