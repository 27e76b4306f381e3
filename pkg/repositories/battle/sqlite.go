package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an already migrated database
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

const battleColumns = `id, category, tier, status, created_at, voting_ends_at, completed_at, channel_ref`

func scanBattle(scan func(...any) error) (*entities.Battle, error) {
	var b entities.Battle
	var createdAt string
	var votingEndsAt, completedAt sql.NullString

	if err := scan(&b.ID, &b.Category, &b.Tier, &b.Status, &createdAt, &votingEndsAt, &completedAt, &b.ChannelRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning battle: %w", err)
	}

	var err error
	if b.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if b.VotingEndsAt, err = db.ParseNullTime(votingEndsAt); err != nil {
		return nil, err
	}
	if b.CompletedAt, err = db.ParseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func getBattle(ctx context.Context, q queryer, battleID int64) (*entities.Battle, error) {
	row := q.QueryRowContext(ctx, `SELECT `+battleColumns+` FROM battles WHERE id = ?`, battleID)
	return scanBattle(row.Scan)
}

func getOpenBattle(ctx context.Context, q queryer, category string, tier int64) (*entities.Battle, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+battleColumns+` FROM battles WHERE category = ? AND tier = ? AND status != ?`,
		category, tier, entities.BattleStatusCompleted,
	)
	return scanBattle(row.Scan)
}

// GetBattle retrieves a battle by ID
func (r *SQLiteRepository) GetBattle(ctx context.Context, battleID int64) (*entities.Battle, error) {
	return getBattle(ctx, r.db, battleID)
}

// GetOpenBattle retrieves the pool's battle that has not completed yet
func (r *SQLiteRepository) GetOpenBattle(ctx context.Context, category string, tier int64) (*entities.Battle, error) {
	return getOpenBattle(ctx, r.db, category, tier)
}

// ListBattles returns battles in any of the statuses, oldest first. No
// statuses means all battles.
func (r *SQLiteRepository) ListBattles(ctx context.Context, statuses ...entities.BattleStatus) ([]*entities.Battle, error) {
	query := `SELECT ` + battleColumns + ` FROM battles`
	var args []any
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying battles: %w", err)
	}
	defer rows.Close()

	var battles []*entities.Battle
	for rows.Next() {
		b, err := scanBattle(rows.Scan)
		if err != nil {
			return nil, err
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}

// SetChannelRef stores the adapter's reference for the battle
func (r *SQLiteRepository) SetChannelRef(ctx context.Context, battleID int64, ref string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE battles SET channel_ref = ? WHERE id = ?`, ref, battleID)
	if err != nil {
		return fmt.Errorf("error setting channel ref: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseBattle moves the pool's pending battle to closed
func (r *SQLiteRepository) CloseBattle(ctx context.Context, category string, tier int64) (*entities.Battle, error) {
	var closed *entities.Battle
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getOpenBattle(ctx, tx, category, tier)
		if err != nil {
			return err
		}
		if b.Status != entities.BattleStatusPending {
			return ErrPhaseConflict
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE battles SET status = ? WHERE id = ? AND status = ?`,
			entities.BattleStatusClosed, b.ID, entities.BattleStatusPending,
		); err != nil {
			return fmt.Errorf("error closing battle: %w", err)
		}
		b.Status = entities.BattleStatusClosed
		closed = b
		return nil
	})
	return closed, err
}

// PoolTotals returns pool totals for a category, or all pools when empty
func (r *SQLiteRepository) PoolTotals(ctx context.Context, category string) ([]*entities.PoolTotal, error) {
	query := `SELECT category, tier, total_amount, entrant_count FROM pool_totals`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, tier`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying pool totals: %w", err)
	}
	defer rows.Close()

	var totals []*entities.PoolTotal
	for rows.Next() {
		var t entities.PoolTotal
		if err := rows.Scan(&t.Category, &t.Tier, &t.TotalAmount, &t.EntrantCount); err != nil {
			return nil, fmt.Errorf("error scanning pool total: %w", err)
		}
		totals = append(totals, &t)
	}
	return totals, rows.Err()
}

// adjustPoolTotal adds signed deltas to the pool's running total. A total
// that would go negative fails the CHECK constraint and the transaction.
func adjustPoolTotal(ctx context.Context, tx *sql.Tx, category string, tier, amount, count int64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO pool_totals (category, tier, total_amount, entrant_count) VALUES (?, ?, 0, 0)`,
		category, tier,
	); err != nil {
		return fmt.Errorf("error creating pool total: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE pool_totals
		SET total_amount = total_amount + ?, entrant_count = entrant_count + ?
		WHERE category = ? AND tier = ?`,
		amount, count, category, tier,
	); err != nil {
		return fmt.Errorf("error updating pool total: %w", err)
	}
	return nil
}
