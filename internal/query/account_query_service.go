package query

import (
	"context"

	"github.com/coralbank/account-service/internal/cqrs"
	"github.com/coralbank/account-service/internal/models"
)

// AccountReader is the read-side data access the query service depends on.
type AccountReader interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Account, error)
}

// AccountQueryService serves read-only account projections.
type AccountQueryService struct {
	accounts AccountReader
}

func NewAccountQueryService(accounts AccountReader) *AccountQueryService {
	return &AccountQueryService{accounts: accounts}
}

// GetAccount fetches a single account by id. A negative id is rejected as
// an invalid argument rather than a not-found: it signals a caller bug.
func (s *AccountQueryService) GetAccount(q cqrs.GetAccountQuery) (*models.Account, error) {
	if q.ID < 0 {
		return nil, models.ErrInvalidArgument
	}
	return s.accounts.FindByID(context.Background(), q.ID)
}

// ListAccountsForUser projects all of a user's accounts down to
// number/balance pairs. No mutation, no ownership filtering beyond the
// user id itself.
func (s *AccountQueryService) ListAccountsForUser(q cqrs.ListAccountsQuery) ([]models.AccountInfo, error) {
	accounts, err := s.accounts.ListByUserID(context.Background(), q.UserID)
	if err != nil {
		return nil, err
	}

	infos := make([]models.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		infos = append(infos, models.AccountInfo{
			AccountNumber: a.AccountNumber,
			Balance:       a.Balance,
		})
	}
	return infos, nil
}
