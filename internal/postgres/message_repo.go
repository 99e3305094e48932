package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/bkbimal250/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `
	id, sender_id, receiver_id, message, message_type,
	file_url, file_name, file_size, file_type,
	is_read, read_at, is_delivered, delivered_at,
	is_edited, is_deleted, deleted_at,
	reply_to, created_at, updated_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.Kind,
		&m.FileURL, &m.FileName, &m.FileSize, &m.FileType,
		&m.IsRead, &m.ReadAt, &m.IsDelivered, &m.DeliveredAt,
		&m.IsEdited, &m.IsDeleted, &m.DeletedAt,
		&m.ReplyTo, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_messages
			(sender_id, receiver_id, message, message_type,
			 file_url, file_name, file_size, file_type, reply_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING`+messageColumns,
		m.SenderID, m.ReceiverID, m.Body, m.Kind,
		m.FileURL, m.FileName, m.FileSize, m.FileType, m.ReplyTo)

	return scanMessage(row)
}

func (r *MessageRepository) Get(ctx context.Context, id int64) (*domain.Message, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+messageColumns+` FROM chat_messages WHERE id=$1`, id)
	return scanMessage(row)
}

// MarkRead flags the given messages as read. Only rows addressed to
// receiverID are touched; ids belonging to someone else are skipped.
func (r *MessageRepository) MarkRead(ctx context.Context, ids []int64, receiverID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET is_read=true, read_at=now(), updated_at=now()
		WHERE id = ANY($1) AND receiver_id=$2 AND is_read=false
	`, ids, receiverID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// MarkConversationRead flags every unread message from senderID to
// receiverID as read.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET is_read=true, read_at=now(), updated_at=now()
		WHERE sender_id=$1 AND receiver_id=$2 AND is_read=false
	`, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// History returns all messages between two users, oldest first.
func (r *MessageRepository) History(ctx context.Context, userID, peerID int64) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+messageColumns+`
		FROM chat_messages
		WHERE (sender_id=$1 AND receiver_id=$2)
		   OR (sender_id=$2 AND receiver_id=$1)
		ORDER BY created_at ASC, id ASC
	`, userID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Edit(ctx context.Context, id int64, body string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE chat_messages
		SET message=$2, is_edited=true, updated_at=now()
		WHERE id=$1
		RETURNING`+messageColumns, id, body)
	return scanMessage(row)
}

func (r *MessageRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET is_deleted=true, deleted_at=now(), updated_at=now()
		WHERE id=$1
	`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) UnreadCount(ctx context.Context, receiverID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM chat_messages
		WHERE receiver_id=$1 AND is_read=false AND is_deleted=false
	`, receiverID).Scan(&count)
	return count, err
}

type ConversationRow struct {
	PeerID        int64
	LastMessage   *string
	LastKind      *domain.MessageKind
	LastTimestamp *time.Time
	IsSender      bool
	UnreadCount   int64
}

// Conversations returns the latest message per distinct peer for the
// given user, newest conversation first, with per-peer unread counts.
func (r *MessageRepository) Conversations(ctx context.Context, userID int64) ([]ConversationRow, error) {
	// DISTINCT ON forces ORDER BY peer_id in the inner query, so the
	// newest-first ordering needs an outer sort on the surviving rows.
	rows, err := r.db.Query(ctx, `
		SELECT * FROM (
			SELECT DISTINCT ON (t.peer_id)
				t.peer_id, t.message, t.message_type, t.created_at, t.sender_id = $1 AS is_sender,
				(SELECT COUNT(*) FROM chat_messages u
				 WHERE u.sender_id = t.peer_id AND u.receiver_id = $1
				   AND u.is_read = false AND u.is_deleted = false) AS unread_count
			FROM (
				SELECT *,
					CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id
				FROM chat_messages
				WHERE (sender_id = $1 OR receiver_id = $1) AND is_deleted = false
			) t
			ORDER BY t.peer_id, t.created_at DESC, t.id DESC
		) latest
		ORDER BY latest.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversationRow
	for rows.Next() {
		var c ConversationRow
		if err := rows.Scan(&c.PeerID, &c.LastMessage, &c.LastKind, &c.LastTimestamp, &c.IsSender, &c.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
