package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"apichat/internal/models"
)

type ChatRepository struct {
	DB *sql.DB
}

const chatSelect = `
        SELECT c.id,
               s.id, s.username, s.first_name, s.last_name, s.avatar_path,
               r.id, r.username, r.first_name, r.last_name, r.avatar_path,
               c.created_at,
               (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id)
        FROM chats c
        JOIN users s ON c.sender_id = s.id
        JOIN users r ON c.recipient_id = r.id`

func scanChat(row interface{ Scan(...interface{}) error }) (models.Chat, error) {
	var chat models.Chat
	err := row.Scan(
		&chat.ID,
		&chat.Sender.ID, &chat.Sender.Username, &chat.Sender.FirstName, &chat.Sender.LastName, &chat.Sender.AvatarPath,
		&chat.Recipient.ID, &chat.Recipient.Username, &chat.Recipient.FirstName, &chat.Recipient.LastName, &chat.Recipient.AvatarPath,
		&chat.CreatedAt,
		&chat.MessagesCount,
	)
	return chat, err
}

// CreateChat inserts a chat for the pair. The uq_chats_pair index keeps
// the unordered pair unique even when two creates race; the losing insert
// comes back as ErrChatExists.
func (r *ChatRepository) CreateChat(ctx context.Context, senderID, recipientID int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `
        SELECT id FROM chats
        WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
        LIMIT 1`,
		senderID, recipientID, recipientID, senderID,
	).Scan(&existing)
	if err == nil {
		return 0, models.ErrChatExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
        INSERT INTO chats (sender_id, recipient_id, created_at)
        VALUES (?, ?, ?)`,
		senderID, recipientID, time.Now(),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, models.ErrChatExists
		}
		return 0, err
	}

	chatID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(chatID), nil
}

func (r *ChatRepository) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	row := r.DB.QueryRowContext(ctx, chatSelect+` WHERE c.id = ?`, id)
	chat, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, models.ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// chatFilterClauses matches a name fragment against either participant.
func chatFilterClauses(filter models.ChatFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	like := func(senderCol, recipientCol string, value string) {
		clauses = append(clauses,
			"(LOWER("+senderCol+") LIKE ? ESCAPE '\\\\' OR LOWER("+recipientCol+") LIKE ? ESCAPE '\\\\')")
		args = append(args, likePattern(value), likePattern(value))
	}

	if filter.Username != "" {
		like("s.username", "r.username", filter.Username)
	}
	if filter.FirstName != "" {
		like("s.first_name", "r.first_name", filter.FirstName)
	}
	if filter.LastName != "" {
		like("s.last_name", "r.last_name", filter.LastName)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *ChatRepository) ListChatsByUser(ctx context.Context, userID int, filter models.ChatFilter, limit, offset int) ([]models.Chat, error) {
	where, filterArgs := chatFilterClauses(filter)
	query := chatSelect + `
        WHERE (c.sender_id = ? OR c.recipient_id = ?)` + where + `
        ORDER BY c.created_at DESC, c.id DESC
        LIMIT ? OFFSET ?`

	args := []interface{}{userID, userID}
	args = append(args, filterArgs...)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) CountChatsByUser(ctx context.Context, userID int, filter models.ChatFilter) (int, error) {
	where, filterArgs := chatFilterClauses(filter)
	query := `
        SELECT COUNT(*)
        FROM chats c
        JOIN users s ON c.sender_id = s.id
        JOIN users r ON c.recipient_id = r.id
        WHERE (c.sender_id = ? OR c.recipient_id = ?)` + where

	args := []interface{}{userID, userID}
	args = append(args, filterArgs...)

	var count int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}
