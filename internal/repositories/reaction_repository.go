package repositories

import (
	"context"
	"database/sql"
	"errors"
)

type ReactionRepository struct {
	DB *sql.DB
}

// ToggleLike flips the user's like on a message. Adding a like removes an
// existing dislike so a user is never in both sets.
func (r *ReactionRepository) ToggleLike(ctx context.Context, messageID, userID int) error {
	return r.toggle(ctx, "message_likes", "message_dislikes", messageID, userID)
}

// ToggleDislike is symmetric to ToggleLike.
func (r *ReactionRepository) ToggleDislike(ctx context.Context, messageID, userID int) error {
	return r.toggle(ctx, "message_dislikes", "message_likes", messageID, userID)
}

// toggle runs inside one transaction so concurrent toggles settle as one
// of the two serial orders, never a torn state.
func (r *ReactionRepository) toggle(ctx context.Context, table, opposite string, messageID, userID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var present int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE message_id = ? AND user_id = ? FOR UPDATE`,
		messageID, userID,
	).Scan(&present)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE message_id = ? AND user_id = ?`,
			messageID, userID,
		); err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+opposite+` WHERE message_id = ? AND user_id = ?`,
			messageID, userID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (message_id, user_id) VALUES (?, ?)`,
			messageID, userID,
		); err != nil {
			return err
		}
	default:
		return err
	}

	return tx.Commit()
}
