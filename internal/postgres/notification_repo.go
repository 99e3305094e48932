package postgres

import (
	"context"

	"github.com/bkbimal250/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_notifications
			(user_id, sender_id, notification_type, message, related_message_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, n.UserID, n.SenderID, n.Kind, n.Text, n.MessageID)

	out := *n
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns notifications for a user, newest first, with cursor
// pagination over (created_at, id).
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int, after string) ([]domain.Notification, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", err
	}

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, sender_id, notification_type, message,
		       is_read, read_at, related_message_id, created_at
		FROM chat_notifications
		WHERE user_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, userID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Kind, &n.Text,
			&n.IsRead, &n.ReadAt, &n.MessageID, &n.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE chat_notifications
		SET is_read=true, read_at=now()
		WHERE user_id=$1 AND is_read=false
	`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM chat_notifications
		WHERE user_id=$1 AND is_read=false
	`, userID).Scan(&count)
	return count, err
}
