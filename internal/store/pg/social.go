package pg

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"grow104.org/internal/garden"
	"grow104.org/internal/ids"
)

type messages struct {
	db *sql.DB
}

const messageColumns = `id, from_user_id, to_user_id, subject, content,
	coalesce(request_type,''), read, read_at, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*garden.Message, error) {
	var m garden.Message
	var readAt sql.NullTime
	err := row.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Subject, &m.Content,
		&m.RequestType, &m.Read, &readAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}
	return &m, nil
}

func (s *messages) Create(ctx context.Context, m *garden.Message) error {
	if m.ID == "" {
		m.ID = ids.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into messages(id, from_user_id, to_user_id, subject, content, request_type,
			read, created_at)
		values ($1, $2, $3, $4, $5, nullif($6,''), $7, $8)
	`, m.ID, m.FromUserID, m.ToUserID, m.Subject, m.Content, m.RequestType, m.Read, m.CreatedAt)
	return err
}

func (s *messages) Conversation(ctx context.Context, userID, peerID string) ([]*garden.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+messageColumns+` from messages
		where (from_user_id=$1 and to_user_id=$2) or (from_user_id=$2 and to_user_id=$1)
		order by created_at asc
	`, userID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *messages) MarkConversationRead(ctx context.Context, fromUserID, toUserID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		update messages set read=true, read_at=$3
		where from_user_id=$1 and to_user_id=$2 and not read
	`, fromUserID, toUserID, at)
	return err
}

func (s *messages) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from messages where to_user_id=$1 and not read`, userID).Scan(&n)
	return n, err
}

type notifications struct {
	db *sql.DB
}

const notificationColumns = `id, user_id, title, message, type, is_read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*garden.Notification, error) {
	var n garden.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *notifications) Create(ctx context.Context, n *garden.Notification) error {
	if n.ID == "" {
		n.ID = ids.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into notifications(id, user_id, title, message, type, is_read, created_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	return err
}

func (s *notifications) CreateMany(ctx context.Context, ns []*garden.Notification) error {
	for _, n := range ns {
		if err := s.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *notifications) FindByID(ctx context.Context, id string) (*garden.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+notificationColumns+` from notifications where id=$1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, notFound(err, "Notification")
	}
	return n, nil
}

func (s *notifications) List(ctx context.Context, f garden.NotificationFilter) ([]*garden.Notification, int, error) {
	where := []string{"user_id=$1"}
	args := []any{f.UserID}
	if f.IsRead != nil {
		args = append(args, *f.IsRead)
		where = append(where, "is_read=$"+strconv.Itoa(len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, "type=$"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " and ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from notifications where `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `select ` + notificationColumns + ` from notifications where ` + cond +
		` order by created_at desc`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " limit $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += " offset $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*garden.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (s *notifications) MarkRead(ctx context.Context, id string) (*garden.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		update notifications set is_read=true where id=$1 returning `+notificationColumns, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, notFound(err, "Notification")
	}
	return n, nil
}

func (s *notifications) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`update notifications set is_read=true where user_id=$1`, userID)
	return err
}

func (s *notifications) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from notifications where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "Notification")
	}
	return nil
}
