package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
)

// CompleteBattle moves a voting battle to completed and stores its result
func (r *SQLiteRepository) CompleteBattle(ctx context.Context, result *entities.BattleResult) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		battle, err := getBattle(ctx, tx, result.BattleID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE battles SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
			entities.BattleStatusCompleted, db.FormatTime(result.CompletedAt),
			result.BattleID, entities.BattleStatusVoting,
		)
		if err != nil {
			return fmt.Errorf("error completing battle: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrPhaseConflict
		}

		var winnerEntrant sql.NullInt64
		if result.HasWinner {
			winnerEntrant = sql.NullInt64{Int64: result.WinnerEntrantID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO battle_results (
				battle_id, has_winner, winner_entrant_id, winner_user_id, winner_votes,
				paid_entrants, total_pool, winner_payout, platform_fee, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.BattleID, result.HasWinner, winnerEntrant, result.WinnerUserID, result.WinnerVotes,
			result.PaidEntrants, result.TotalPool.String(), result.WinnerPayout.String(),
			result.PlatformFee.String(), db.FormatTime(result.CompletedAt),
		); err != nil {
			return fmt.Errorf("error storing result: %w", err)
		}

		// The pool total only tracks the open battle, so this battle's
		// paid entries leave it now
		var paid int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM entrants WHERE battle_id = ? AND payment_status = ?`,
			result.BattleID, entities.PaymentStatusPaid,
		).Scan(&paid); err != nil {
			return fmt.Errorf("error counting paid entrants: %w", err)
		}
		return adjustPoolTotal(ctx, tx, battle.Category, battle.Tier, -paid*battle.Tier, -paid)
	})
}

const resultQuery = `
	SELECT r.battle_id, b.category, b.tier, r.has_winner, r.winner_entrant_id, r.winner_user_id,
		r.winner_votes, r.paid_entrants, r.total_pool, r.winner_payout, r.platform_fee, r.completed_at
	FROM battle_results r JOIN battles b ON b.id = r.battle_id`

func scanResult(scan func(...any) error) (*entities.BattleResult, error) {
	var res entities.BattleResult
	var winnerEntrant sql.NullInt64
	var totalPool, payout, fee, completedAt string

	if err := scan(&res.BattleID, &res.Category, &res.Tier, &res.HasWinner, &winnerEntrant, &res.WinnerUserID,
		&res.WinnerVotes, &res.PaidEntrants, &totalPool, &payout, &fee, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning result: %w", err)
	}
	res.WinnerEntrantID = winnerEntrant.Int64

	var err error
	if res.TotalPool, err = decimal.NewFromString(totalPool); err != nil {
		return nil, fmt.Errorf("error parsing total pool: %w", err)
	}
	if res.WinnerPayout, err = decimal.NewFromString(payout); err != nil {
		return nil, fmt.Errorf("error parsing winner payout: %w", err)
	}
	if res.PlatformFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("error parsing platform fee: %w", err)
	}
	if res.CompletedAt, err = db.ParseTime(completedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetResult returns the stored result of a completed battle
func (r *SQLiteRepository) GetResult(ctx context.Context, battleID int64) (*entities.BattleResult, error) {
	row := r.db.QueryRowContext(ctx, resultQuery+` WHERE r.battle_id = ?`, battleID)
	return scanResult(row.Scan)
}

// ListResults returns the most recent results first
func (r *SQLiteRepository) ListResults(ctx context.Context, limit int) ([]*entities.BattleResult, error) {
	rows, err := r.db.QueryContext(ctx, resultQuery+` ORDER BY r.completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying results: %w", err)
	}
	defer rows.Close()

	var results []*entities.BattleResult
	for rows.Next() {
		res, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
