package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) Insert(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO courier.message (sender_id, receiver_id, content, ts, read, is_edited, updated_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
		RETURNING id::text
	`, m.SenderID, m.ReceiverID, m.Content, m.Timestamp, m.Read, m.IsEdited, m.UpdatedAt).Scan(&id)
	return id, err
}

func (r *PgMessageRepository) FindByID(ctx context.Context, id string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, sender_id::text, receiver_id::text, content, ts, read, is_edited, updated_at
		FROM courier.message
		WHERE id = $1::uuid
	`, id)
	return scanMessage(row)
}

func (r *PgMessageRepository) UpdateContent(ctx context.Context, id string, content string, updatedAt time.Time) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE courier.message
		SET content = $2, is_edited = TRUE, updated_at = $3
		WHERE id = $1::uuid
		RETURNING id::text, sender_id::text, receiver_id::text, content, ts, read, is_edited, updated_at
	`, id, content, updatedAt)
	return scanMessage(row)
}

func (r *PgMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM courier.message WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgMessageRepository) FindConversation(ctx context.Context, userA, userB string) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, sender_id::text, receiver_id::text, content, ts, read, is_edited, updated_at
		FROM courier.message
		WHERE (sender_id = $1::uuid AND receiver_id = $2::uuid)
		   OR (sender_id = $2::uuid AND receiver_id = $1::uuid)
		ORDER BY ts ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Timestamp, &m.Read, &m.IsEdited, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE courier.message
		SET read = TRUE
		WHERE sender_id = $1::uuid AND receiver_id = $2::uuid AND read = FALSE
	`, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Timestamp, &m.Read, &m.IsEdited, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
