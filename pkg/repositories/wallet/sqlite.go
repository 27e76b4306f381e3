package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an already migrated database
func NewSQLiteRepository(conn *sql.DB, now func() time.Time) *SQLiteRepository {
	if now == nil {
		now = time.Now
	}
	return &SQLiteRepository{db: conn, now: now}
}

// EnsureUser creates the user with a zero balance if unseen
func (r *SQLiteRepository) EnsureUser(ctx context.Context, userID, username string) (*entities.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := EnsureUserTx(ctx, tx, userID, username, r.now()); err != nil {
		return nil, err
	}
	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	return getUser(ctx, r.db, userID)
}

// Debit atomically subtracts entry.Amount
func (r *SQLiteRepository) Debit(ctx context.Context, entry Entry) (*entities.Transaction, error) {
	return r.apply(ctx, func(tx *sql.Tx) (*entities.Transaction, error) {
		return DebitTx(ctx, tx, entry, r.now())
	})
}

// Credit atomically adds entry.Amount
func (r *SQLiteRepository) Credit(ctx context.Context, entry Entry) (*entities.Transaction, error) {
	return r.apply(ctx, func(tx *sql.Tx) (*entities.Transaction, error) {
		return CreditTx(ctx, tx, entry, r.now())
	})
}

func (r *SQLiteRepository) apply(ctx context.Context, fn func(*sql.Tx) (*entities.Transaction, error)) (*entities.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := fn(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing ledger change: %w", err)
	}
	return record, nil
}

// GetTransactions retrieves recent transactions for a user
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*entities.Transaction
	for rows.Next() {
		var t entities.Transaction
		var timestamp string

		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Amount,
			&t.Type,
			&t.ReferenceID,
			&t.Description,
			&timestamp,
			&t.BalanceAfter,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		if t.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return nil, err
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// CreatePurchase records a pending checkout
func (r *SQLiteRepository) CreatePurchase(ctx context.Context, purchase *entities.Purchase) error {
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = r.now()
	}
	if purchase.Status == "" {
		purchase.Status = entities.PurchaseStatusPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := EnsureUserTx(ctx, tx, purchase.UserID, "", purchase.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (checkout_ref, user_id, coins, provider, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		purchase.CheckoutRef, purchase.UserID, purchase.Coins, purchase.Provider,
		purchase.Status, db.FormatTime(purchase.CreatedAt),
	); err != nil {
		return fmt.Errorf("error saving purchase: %w", err)
	}

	return tx.Commit()
}

// GetPurchase retrieves a checkout by its provider reference
func (r *SQLiteRepository) GetPurchase(ctx context.Context, checkoutRef string) (*entities.Purchase, error) {
	return getPurchase(ctx, r.db, checkoutRef)
}

// CreditPurchase flips pending to credited and credits the coins in one transaction
func (r *SQLiteRepository) CreditPurchase(ctx context.Context, checkoutRef string) (*entities.Transaction, error) {
	return r.apply(ctx, func(tx *sql.Tx) (*entities.Transaction, error) {
		purchase, err := getPurchase(ctx, tx, checkoutRef)
		if err != nil {
			return nil, err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE purchases SET status = ? WHERE checkout_ref = ? AND status = ?`,
			entities.PurchaseStatusCredited, checkoutRef, entities.PurchaseStatusPending,
		)
		if err != nil {
			return nil, fmt.Errorf("error updating purchase: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrAlreadyCredited
		}

		return CreditTx(ctx, tx, Entry{
			UserID:      purchase.UserID,
			Amount:      purchase.Coins,
			Type:        entities.TransactionTypePurchase,
			ReferenceID: checkoutRef,
			Description: fmt.Sprintf("Bought %d coins via %s", purchase.Coins, purchase.Provider),
		}, r.now())
	})
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getUser(ctx context.Context, q queryer, userID string) (*entities.User, error) {
	var user entities.User
	var createdAt, updatedAt string

	err := q.QueryRowContext(ctx,
		`SELECT user_id, username, balance, created_at, updated_at FROM users WHERE user_id = ?`,
		userID,
	).Scan(&user.UserID, &user.Username, &user.Balance, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if user.LastUpdated, err = db.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func getPurchase(ctx context.Context, q queryer, checkoutRef string) (*entities.Purchase, error) {
	var p entities.Purchase
	var createdAt string

	err := q.QueryRowContext(ctx, `
		SELECT checkout_ref, user_id, coins, provider, status, created_at
		FROM purchases WHERE checkout_ref = ?`, checkoutRef,
	).Scan(&p.CheckoutRef, &p.UserID, &p.Coins, &p.Provider, &p.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("error getting purchase: %w", err)
	}

	if p.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureUserTx inserts the user inside tx if missing. A non-empty username
// refreshes the stored one.
func EnsureUserTx(ctx context.Context, tx *sql.Tx, userID, username string, now time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	stamp := db.FormatTime(now)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (user_id, username, balance, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = CASE WHEN excluded.username != '' THEN excluded.username ELSE users.username END`,
		userID, username, stamp, stamp,
	)
	if err != nil {
		return fmt.Errorf("error ensuring user: %w", err)
	}
	return nil
}

// DebitTx subtracts entry.Amount inside tx. The UPDATE only matches while the
// balance covers the amount, so concurrent debits cannot overdraw.
func DebitTx(ctx context.Context, tx *sql.Tx, entry Entry, now time.Time) (*entities.Transaction, error) {
	if entry.Amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", entry.Amount)
	}
	if err := EnsureUserTx(ctx, tx, entry.UserID, entry.Username, now); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = balance - ?, updated_at = ?
		WHERE user_id = ? AND balance >= ?`,
		entry.Amount, db.FormatTime(now), entry.UserID, entry.Amount,
	)
	if err != nil {
		return nil, fmt.Errorf("error debiting balance: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("error getting rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrInsufficientFunds
	}

	return recordTx(ctx, tx, entry, -entry.Amount, now)
}

// CreditTx adds entry.Amount inside tx
func CreditTx(ctx context.Context, tx *sql.Tx, entry Entry, now time.Time) (*entities.Transaction, error) {
	if entry.Amount < 0 {
		return nil, fmt.Errorf("credit amount cannot be negative, got %d", entry.Amount)
	}
	if err := EnsureUserTx(ctx, tx, entry.UserID, entry.Username, now); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ?, updated_at = ? WHERE user_id = ?`,
		entry.Amount, db.FormatTime(now), entry.UserID,
	); err != nil {
		return nil, fmt.Errorf("error crediting balance: %w", err)
	}

	return recordTx(ctx, tx, entry, entry.Amount, now)
}

func recordTx(ctx context.Context, tx *sql.Tx, entry Entry, signed int64, now time.Time) (*entities.Transaction, error) {
	var balance int64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE user_id = ?`, entry.UserID,
	).Scan(&balance); err != nil {
		return nil, fmt.Errorf("error reading balance: %w", err)
	}

	record := &entities.Transaction{
		ID:           uuid.New().String(),
		UserID:       entry.UserID,
		Amount:       signed,
		Type:         entry.Type,
		ReferenceID:  entry.ReferenceID,
		Description:  entry.Description,
		Timestamp:    now,
		BalanceAfter: balance,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.Amount,
		record.Type,
		record.ReferenceID,
		record.Description,
		db.FormatTime(record.Timestamp),
		record.BalanceAfter,
	); err != nil {
		return nil, fmt.Errorf("error adding transaction: %w", err)
	}

	return record, nil
}
