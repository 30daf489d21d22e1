package repositories

import (
	"context"
	"database/sql"
)

type NotifyTokenRepository struct {
	DB *sql.DB
}

func (r *NotifyTokenRepository) SaveToken(ctx context.Context, userID int, token string) error {
	query := `
        INSERT INTO notify_tokens (user_id, token)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE token = VALUES(token)`
	_, err := r.DB.ExecContext(ctx, query, userID, token)
	return err
}

func (r *NotifyTokenRepository) DeleteToken(ctx context.Context, userID int, token string) error {
	query := `DELETE FROM notify_tokens WHERE user_id = ? AND token = ?`
	_, err := r.DB.ExecContext(ctx, query, userID, token)
	return err
}

func (r *NotifyTokenRepository) GetTokensByUserID(ctx context.Context, userID int) ([]string, error) {
	query := `SELECT token FROM notify_tokens WHERE user_id = ?`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
