package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"apichat/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

// CreateMessage writes the message and its image rows as one transaction.
// A failing image insert rolls the whole unit back so no orphaned message
// is left behind.
func (r *MessageRepository) CreateMessage(ctx context.Context, message models.Message, imagePaths []string) (models.Message, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	message.DateSent = time.Now()
	message.IsRead = false

	result, err := tx.ExecContext(ctx, `
        INSERT INTO messages (chat_id, author_id, text, date_sent, is_read)
        VALUES (?, ?, ?, ?, ?)`,
		message.ChatID, message.Author.ID, message.Text, message.DateSent, message.IsRead,
	)
	if err != nil {
		return models.Message{}, err
	}
	messageID, err := result.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	message.ID = int(messageID)

	for _, path := range imagePaths {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO images (message_id, path) VALUES (?, ?)`,
			message.ID, path,
		)
		if err != nil {
			return models.Message{}, err
		}
		imageID, err := res.LastInsertId()
		if err != nil {
			return models.Message{}, err
		}
		message.Images = append(message.Images, models.Image{
			ID:        int(imageID),
			MessageID: message.ID,
			Path:      path,
		})
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}

	if message.Images == nil {
		message.Images = []models.Image{}
	}
	message.Likes = []int{}
	message.Dislikes = []int{}
	return message, nil
}

func (r *MessageRepository) GetMessageByID(ctx context.Context, chatID, messageID int) (models.Message, error) {
	var message models.Message
	query := `
        SELECT m.id, m.chat_id, m.text, m.date_sent, m.is_read,
               u.id, u.username, u.first_name, u.last_name, u.avatar_path
        FROM messages m
        JOIN users u ON m.author_id = u.id
        WHERE m.id = ? AND m.chat_id = ?`
	err := r.DB.QueryRowContext(ctx, query, messageID, chatID).Scan(
		&message.ID, &message.ChatID, &message.Text, &message.DateSent, &message.IsRead,
		&message.Author.ID, &message.Author.Username, &message.Author.FirstName,
		&message.Author.LastName, &message.Author.AvatarPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, models.ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}

	if err := r.loadRelations(ctx, &message); err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func messageFilterClauses(filter models.MessageFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.Text != "" {
		clauses = append(clauses, "LOWER(m.text) LIKE ? ESCAPE '\\\\'")
		args = append(args, likePattern(filter.Text))
	}
	if filter.Author != "" {
		clauses = append(clauses, "LOWER(u.username) LIKE ? ESCAPE '\\\\'")
		args = append(args, likePattern(filter.Author))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *MessageRepository) ListMessages(ctx context.Context, chatID int, filter models.MessageFilter, limit, offset int) ([]models.Message, error) {
	where, filterArgs := messageFilterClauses(filter)
	query := `
        SELECT m.id, m.chat_id, m.text, m.date_sent, m.is_read,
               u.id, u.username, u.first_name, u.last_name, u.avatar_path
        FROM messages m
        JOIN users u ON m.author_id = u.id
        WHERE m.chat_id = ?` + where + `
        ORDER BY m.date_sent DESC, m.id DESC
        LIMIT ? OFFSET ?`

	args := []interface{}{chatID}
	args = append(args, filterArgs...)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(
			&message.ID, &message.ChatID, &message.Text, &message.DateSent, &message.IsRead,
			&message.Author.ID, &message.Author.Username, &message.Author.FirstName,
			&message.Author.LastName, &message.Author.AvatarPath,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range messages {
		if err := r.loadRelations(ctx, &messages[i]); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

func (r *MessageRepository) CountMessages(ctx context.Context, chatID int, filter models.MessageFilter) (int, error) {
	where, filterArgs := messageFilterClauses(filter)
	query := `
        SELECT COUNT(*)
        FROM messages m
        JOIN users u ON m.author_id = u.id
        WHERE m.chat_id = ?` + where

	args := []interface{}{chatID}
	args = append(args, filterArgs...)

	var count int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *MessageRepository) UpdateMessageText(ctx context.Context, messageID int, text string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE messages SET text = ? WHERE id = ?`, text, messageID)
	return err
}

// DeleteMessage removes the message row; image rows and reaction rows go
// with it via foreign key cascade.
func (r *MessageRepository) DeleteMessage(ctx context.Context, messageID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, messageID)
	return err
}

func (r *MessageRepository) GetImagePaths(ctx context.Context, messageID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT path FROM images WHERE message_id = ?`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func (r *MessageRepository) loadRelations(ctx context.Context, message *models.Message) error {
	images, err := r.loadImages(ctx, message.ID)
	if err != nil {
		return err
	}
	message.Images = images

	likes, err := r.loadReactions(ctx, "message_likes", message.ID)
	if err != nil {
		return err
	}
	message.Likes = likes

	dislikes, err := r.loadReactions(ctx, "message_dislikes", message.ID)
	if err != nil {
		return err
	}
	message.Dislikes = dislikes
	return nil
}

func (r *MessageRepository) loadImages(ctx context.Context, messageID int) ([]models.Image, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, message_id, path FROM images WHERE message_id = ? ORDER BY id`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(&image.ID, &image.MessageID, &image.Path); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *MessageRepository) loadReactions(ctx context.Context, table string, messageID int) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT user_id FROM `+table+` WHERE message_id = ? ORDER BY user_id`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []int{}
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}
