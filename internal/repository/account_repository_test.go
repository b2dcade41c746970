package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/coralbank/account-service/internal/models"
	"github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
)

func newWriteRepo(t *testing.T) (*AccountWriteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAccountWriteRepository(db), mock
}

func newReadRepo(t *testing.T) (*AccountReadRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewAccountReadRepository(db, client), mock
}

func accountRows(accounts ...*models.Account) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "account_number", "status", "balance",
		"registered_at", "unregistered_at", "created_at", "updated_at",
	})
	for _, a := range accounts {
		var unregisteredAt interface{}
		if a.UnregisteredAt != nil {
			unregisteredAt = *a.UnregisteredAt
		}
		rows.AddRow(a.ID, a.UserID, a.AccountNumber, string(a.Status), a.Balance,
			a.RegisteredAt, unregisteredAt, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

// ---- write repository ----

func TestSaveInsertAssignsIDAndAuditColumns(t *testing.T) {
	repo, mock := newWriteRepo(t)

	created := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), created, created))

	saved, err := repo.Save(&models.Account{
		UserID: 12, AccountNumber: "1000000012",
		Status: models.StatusInUse, Balance: 1000,
		RegisteredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != 7 {
		t.Errorf("expected assigned id 7, got %d", saved.ID)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("expected audit timestamps to come back from the insert")
	}
	if !saved.CreatedAt.Equal(created) {
		t.Errorf("expected createdAt %v, got %v", created, saved.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveInsertDuplicateAccountNumber(t *testing.T) {
	repo, mock := newWriteRepo(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Save(&models.Account{
		UserID: 12, AccountNumber: "1000000012",
		Status: models.StatusInUse, Balance: 1000,
		RegisteredAt: time.Now().UTC(),
	})
	if !errors.Is(err, models.ErrDuplicateAccountNumber) {
		t.Fatalf("expected ErrDuplicateAccountNumber, got %v", err)
	}
}

func TestSaveUpdateMissingAccount(t *testing.T) {
	repo, mock := newWriteRepo(t)

	mock.ExpectExec("UPDATE accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Save(&models.Account{
		ID: 99, Status: models.StatusUnregistered,
	})
	if !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// Every lifecycle lookup must hit the database: a balance cleared by
// another service between two reads has to be visible on the second one.
func TestGetByAccountNumberReadsDatabase(t *testing.T) {
	repo, mock := newWriteRepo(t)

	registered := time.Now().UTC()
	funded := &models.Account{
		ID: 7, UserID: 12, AccountNumber: "1000000012",
		Status: models.StatusInUse, Balance: 100,
		RegisteredAt: registered, CreatedAt: registered, UpdatedAt: registered,
	}
	emptied := &models.Account{
		ID: 7, UserID: 12, AccountNumber: "1000000012",
		Status: models.StatusInUse, Balance: 0,
		RegisteredAt: registered, CreatedAt: registered, UpdatedAt: registered,
	}
	mock.ExpectQuery("FROM accounts WHERE account_number").
		WillReturnRows(accountRows(funded))
	mock.ExpectQuery("FROM accounts WHERE account_number").
		WillReturnRows(accountRows(emptied))

	first, err := repo.GetByAccountNumber("1000000012")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Balance != 100 {
		t.Errorf("expected balance 100 on first read, got %d", first.Balance)
	}

	second, err := repo.GetByAccountNumber("1000000012")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Balance != 0 {
		t.Errorf("expected cleared balance on second read, got %d", second.Balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("second lookup must query the database: %v", err)
	}
}

func TestGetByAccountNumberNotFound(t *testing.T) {
	repo, mock := newWriteRepo(t)

	mock.ExpectQuery("FROM accounts WHERE account_number").
		WillReturnRows(accountRows())

	_, err := repo.GetByAccountNumber("9999999999")
	if !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// ---- read repository ----

func TestFindByIDWarmsCache(t *testing.T) {
	repo, mock := newReadRepo(t)
	ctx := context.Background()

	registered := time.Now().UTC().Truncate(time.Second)
	stored := &models.Account{
		ID: 42, UserID: 1, AccountNumber: "1000000000",
		Status: models.StatusInUse, Balance: 1000,
		RegisteredAt: registered, CreatedAt: registered, UpdatedAt: registered,
	}
	mock.ExpectQuery("FROM accounts WHERE id").
		WillReturnRows(accountRows(stored))

	first, err := repo.FindByID(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AccountNumber != "1000000000" {
		t.Errorf("expected number 1000000000, got %s", first.AccountNumber)
	}

	// Only one query was expected; a second database read would fail here.
	second, err := repo.FindByID(ctx, 42)
	if err != nil {
		t.Fatalf("cache-served read failed: %v", err)
	}
	if second.Balance != 1000 {
		t.Errorf("expected cached balance 1000, got %d", second.Balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInvalidateAccountForcesDatabaseRead(t *testing.T) {
	repo, mock := newReadRepo(t)
	ctx := context.Background()

	registered := time.Now().UTC().Truncate(time.Second)
	closed := registered.Add(time.Hour)
	open := &models.Account{
		ID: 42, UserID: 1, AccountNumber: "1000000000",
		Status: models.StatusInUse, Balance: 0,
		RegisteredAt: registered, CreatedAt: registered, UpdatedAt: registered,
	}
	repo.CacheAccount(ctx, open)

	repo.InvalidateAccount(ctx, 42)

	unregistered := &models.Account{
		ID: 42, UserID: 1, AccountNumber: "1000000000",
		Status: models.StatusUnregistered, Balance: 0,
		RegisteredAt: registered, UnregisteredAt: &closed,
		CreatedAt: registered, UpdatedAt: closed,
	}
	mock.ExpectQuery("FROM accounts WHERE id").
		WillReturnRows(accountRows(unregistered))

	got, err := repo.FindByID(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.StatusUnregistered {
		t.Errorf("expected refreshed status UNREGISTERED, got %s", got.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("read after invalidation must query the database: %v", err)
	}
}

func TestFindMostRecentlyCreatedEmpty(t *testing.T) {
	repo, mock := newReadRepo(t)

	mock.ExpectQuery("FROM accounts ORDER BY id DESC").
		WillReturnRows(accountRows())

	latest, err := repo.FindMostRecentlyCreated()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for an empty table, got %+v", latest)
	}
}
