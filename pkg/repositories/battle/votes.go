package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
)

// CastVote stores a new vote. A voter's standing vote is never overwritten.
func (r *SQLiteRepository) CastVote(ctx context.Context, vote *entities.Vote) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (battle_id, voter_id, entrant_id, created_at)
		VALUES (?, ?, ?, ?)`,
		vote.BattleID, vote.VoterID, vote.EntrantID, db.FormatTime(vote.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("error casting vote: %w", err)
	}
	if vote.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("error reading vote id: %w", err)
	}
	return nil
}

// GetVote returns the voter's standing vote in the battle
func (r *SQLiteRepository) GetVote(ctx context.Context, battleID int64, voterID string) (*entities.Vote, error) {
	var v entities.Vote
	var createdAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, battle_id, voter_id, entrant_id, created_at
		FROM votes WHERE battle_id = ? AND voter_id = ?`,
		battleID, voterID,
	).Scan(&v.ID, &v.BattleID, &v.VoterID, &v.EntrantID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting vote: %w", err)
	}

	if v.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVote removes the voter's vote and reports whether one existed
func (r *SQLiteRepository) DeleteVote(ctx context.Context, battleID int64, voterID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE battle_id = ? AND voter_id = ?`, battleID, voterID)
	if err != nil {
		return false, fmt.Errorf("error deleting vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %w", err)
	}
	return n > 0, nil
}

// CountVotes returns vote counts per entrant id. Entrants without votes are absent.
func (r *SQLiteRepository) CountVotes(ctx context.Context, battleID int64) (map[int64]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entrant_id, COUNT(*) FROM votes WHERE battle_id = ? GROUP BY entrant_id`, battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("error counting votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var entrantID, count int64
		if err := rows.Scan(&entrantID, &count); err != nil {
			return nil, fmt.Errorf("error scanning vote count: %w", err)
		}
		counts[entrantID] = count
	}
	return counts, rows.Err()
}
