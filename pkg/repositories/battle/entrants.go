package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/repositories/wallet"
)

const entrantColumns = `id, battle_id, user_id, username, submission_ref, payment_status, disqualified, display_number, message_ref, created_at`

func scanEntrant(scan func(...any) error) (*entities.Entrant, error) {
	var e entities.Entrant
	var createdAt string

	if err := scan(&e.ID, &e.BattleID, &e.UserID, &e.Username, &e.SubmissionRef, &e.PaymentStatus,
		&e.Disqualified, &e.DisplayNumber, &e.MessageRef, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning entrant: %w", err)
	}

	var err error
	if e.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func getEntrant(ctx context.Context, q queryer, entrantID int64) (*entities.Entrant, error) {
	row := q.QueryRowContext(ctx, `SELECT `+entrantColumns+` FROM entrants WHERE id = ?`, entrantID)
	return scanEntrant(row.Scan)
}

func listEntrants(ctx context.Context, q queryer, battleID int64) ([]*entities.Entrant, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+entrantColumns+` FROM entrants WHERE battle_id = ? ORDER BY id`, battleID)
	if err != nil {
		return nil, fmt.Errorf("error querying entrants: %w", err)
	}
	defer rows.Close()

	var entrants []*entities.Entrant
	for rows.Next() {
		e, err := scanEntrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		entrants = append(entrants, e)
	}
	return entrants, rows.Err()
}

// AdmitEntrant debits the tier and adds a paid entrant to the pool's pending battle
func (r *SQLiteRepository) AdmitEntrant(ctx context.Context, p AdmitParams) (*entities.Battle, *entities.Entrant, error) {
	var battle *entities.Battle
	var entrant *entities.Entrant

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		battle, err = getOpenBattle(ctx, tx, p.Category, p.Tier)
		switch {
		case errors.Is(err, ErrNotFound):
			if battle, err = createBattle(ctx, tx, p.Category, p.Tier, p.Now); err != nil {
				return err
			}
		case err != nil:
			return err
		case !battle.Status.AcceptsEntries():
			return ErrPhaseConflict
		}

		if err := wallet.EnsureUserTx(ctx, tx, p.UserID, p.Username, p.Now); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO entrants (battle_id, user_id, username, submission_ref, payment_status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			battle.ID, p.UserID, p.Username, p.SubmissionRef, entities.PaymentStatusPaid, db.FormatTime(p.Now),
		)
		if err != nil {
			return fmt.Errorf("error inserting entrant: %w", err)
		}
		entrantID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("error reading entrant id: %w", err)
		}

		if _, err := wallet.DebitTx(ctx, tx, wallet.Entry{
			UserID:      p.UserID,
			Username:    p.Username,
			Amount:      p.Tier,
			Type:        entities.TransactionTypeEntryFee,
			ReferenceID: fmt.Sprintf("entrant:%d", entrantID),
			Description: fmt.Sprintf("Entry into %s $%d battle #%d", p.Category, p.Tier, battle.ID),
		}, p.Now); err != nil {
			return err
		}

		if err := adjustPoolTotal(ctx, tx, p.Category, p.Tier, p.Tier, 1); err != nil {
			return err
		}

		entrant, err = getEntrant(ctx, tx, entrantID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return battle, entrant, nil
}

func createBattle(ctx context.Context, tx *sql.Tx, category string, tier int64, now time.Time) (*entities.Battle, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO battles (category, tier, status, created_at) VALUES (?, ?, ?, ?)`,
		category, tier, entities.BattleStatusPending, db.FormatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOpenBattle
		}
		return nil, fmt.Errorf("error creating battle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading battle id: %w", err)
	}
	return getBattle(ctx, tx, id)
}

// LastEntryAt returns when the user last entered a battle of the pool that
// has not completed yet, or nil. Disqualified entrants still count.
func (r *SQLiteRepository) LastEntryAt(ctx context.Context, userID, category string, tier int64) (*time.Time, error) {
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(e.created_at)
		FROM entrants e JOIN battles b ON b.id = e.battle_id
		WHERE e.user_id = ? AND b.category = ? AND b.tier = ? AND b.status != ?`,
		userID, category, tier, entities.BattleStatusCompleted,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("error querying last entry: %w", err)
	}
	return db.ParseNullTime(last)
}

// RemoveEntrant deletes the entrant with its received votes and refunds the tier
func (r *SQLiteRepository) RemoveEntrant(ctx context.Context, entrantID int64, now time.Time) (*Removal, error) {
	removal := &Removal{}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		entrant, err := getEntrant(ctx, tx, entrantID)
		if err != nil {
			return err
		}
		battle, err := getBattle(ctx, tx, entrant.BattleID)
		if err != nil {
			return err
		}
		if !battle.Status.IsOpen() {
			return ErrPhaseConflict
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE entrant_id = ?`, entrantID)
		if err != nil {
			return fmt.Errorf("error deleting votes: %w", err)
		}
		removal.VotesPurged, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, `DELETE FROM entrants WHERE id = ?`, entrantID); err != nil {
			return fmt.Errorf("error deleting entrant: %w", err)
		}

		if entrant.PaymentStatus == entities.PaymentStatusPaid {
			if err := adjustPoolTotal(ctx, tx, battle.Category, battle.Tier, -battle.Tier, -1); err != nil {
				return err
			}
			removal.Refund, err = wallet.CreditTx(ctx, tx, wallet.Entry{
				UserID:      entrant.UserID,
				Amount:      battle.Tier,
				Type:        entities.TransactionTypeRefund,
				ReferenceID: fmt.Sprintf("entrant:%d", entrant.ID),
				Description: fmt.Sprintf("Refund for removal from %s battle #%d", battle.Pool(), battle.ID),
			}, now)
			if err != nil {
				return err
			}
		}

		removal.Entrant = entrant
		removal.Battle = battle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removal, nil
}

// GetEntrant retrieves an entrant by ID
func (r *SQLiteRepository) GetEntrant(ctx context.Context, entrantID int64) (*entities.Entrant, error) {
	return getEntrant(ctx, r.db, entrantID)
}

// GetEntrantByMessage resolves the entrant whose submission message is messageRef
func (r *SQLiteRepository) GetEntrantByMessage(ctx context.Context, messageRef string) (*entities.Entrant, error) {
	if messageRef == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+entrantColumns+` FROM entrants WHERE message_ref = ?`, messageRef)
	return scanEntrant(row.Scan)
}

// GetEntrantByNumber resolves an entrant by its display number in the battle
func (r *SQLiteRepository) GetEntrantByNumber(ctx context.Context, battleID int64, number int) (*entities.Entrant, error) {
	if number <= 0 {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entrantColumns+` FROM entrants WHERE battle_id = ? AND display_number = ?`,
		battleID, number,
	)
	return scanEntrant(row.Scan)
}

// ListEntrants returns the battle's entrants in submission order
func (r *SQLiteRepository) ListEntrants(ctx context.Context, battleID int64) ([]*entities.Entrant, error) {
	return listEntrants(ctx, r.db, battleID)
}

// SetEntrantMessageRef stores the adapter's message for the entrant
func (r *SQLiteRepository) SetEntrantMessageRef(ctx context.Context, entrantID int64, ref string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entrants SET message_ref = ? WHERE id = ?`, ref, entrantID)
	if err != nil {
		return fmt.Errorf("error setting message ref: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDisqualified flags the entrant while its battle is still open
func (r *SQLiteRepository) SetDisqualified(ctx context.Context, entrantID int64) (*entities.Entrant, error) {
	var entrant *entities.Entrant
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntrant(ctx, tx, entrantID)
		if err != nil {
			return err
		}
		battle, err := getBattle(ctx, tx, e.BattleID)
		if err != nil {
			return err
		}
		if !battle.Status.IsOpen() {
			return ErrPhaseConflict
		}
		if _, err := tx.ExecContext(ctx, `UPDATE entrants SET disqualified = 1 WHERE id = ?`, entrantID); err != nil {
			return fmt.Errorf("error disqualifying entrant: %w", err)
		}
		e.Disqualified = true
		entrant = e
		return nil
	})
	return entrant, err
}

// StartVoting moves the battle to voting and numbers its eligible entrants
func (r *SQLiteRepository) StartVoting(ctx context.Context, battleID int64, endsAt time.Time, minEntrants int) (*entities.Battle, []*entities.Entrant, error) {
	var battle *entities.Battle
	var eligible []*entities.Entrant

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if battle, err = getBattle(ctx, tx, battleID); err != nil {
			return err
		}
		if !battle.Status.CanStartVoting() {
			return ErrPhaseConflict
		}

		entrants, err := listEntrants(ctx, tx, battleID)
		if err != nil {
			return err
		}
		for _, e := range entrants {
			if e.Eligible() {
				eligible = append(eligible, e)
			}
		}
		if len(eligible) < minEntrants {
			return ErrNotEnoughEntrants
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE battles SET status = ?, voting_ends_at = ?
			WHERE id = ? AND status IN (?, ?)`,
			entities.BattleStatusVoting, db.FormatTime(endsAt),
			battleID, entities.BattleStatusPending, entities.BattleStatusClosed,
		)
		if err != nil {
			return fmt.Errorf("error starting voting: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrPhaseConflict
		}

		for i, e := range eligible {
			e.DisplayNumber = i + 1
			if _, err := tx.ExecContext(ctx,
				`UPDATE entrants SET display_number = ? WHERE id = ?`, e.DisplayNumber, e.ID,
			); err != nil {
				return fmt.Errorf("error numbering entrant: %w", err)
			}
		}

		battle.Status = entities.BattleStatusVoting
		battle.VotingEndsAt = &endsAt
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return battle, eligible, nil
}
