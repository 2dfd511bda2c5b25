package bandhub

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the document store behind every band-scoped operation.
// Counter changes go through AddCommentCount / AddReplyCount, which must be
// single atomic increments at the storage layer.
type Store interface {
	// Bands
	CreateBand(ctx context.Context, b *Band, creatorUID string) error
	LoadBand(ctx context.Context, id string) (*Band, error)
	FindBandByInviteCode(ctx context.Context, code string) (*Band, error)
	ListBandsForUser(ctx context.Context, uid string) ([]Band, error)
	UpsertMember(ctx context.Context, bandID, uid string, m Membership) error
	SetInviteCode(ctx context.Context, bandID, code string) error

	// Media
	CreateMedia(ctx context.Context, m *Media) error
	LoadMedia(ctx context.Context, ref MediaRef) (*Media, error)
	ListMedia(ctx context.Context, bandID, mediaType string) ([]Media, error)
	UpdateMedia(ctx context.Context, ref MediaRef, patch MediaPatch) error
	DeleteMedia(ctx context.Context, ref MediaRef) error
	AddCommentCount(ctx context.Context, ref MediaRef, delta int) error

	// Comments and replies
	CreateComment(ctx context.Context, ref MediaRef, c *Comment) error
	LoadComment(ctx context.Context, ref CommentRef) (*Comment, error)
	ListComments(ctx context.Context, ref MediaRef) ([]Comment, error)
	UpdateComment(ctx context.Context, ref CommentRef, patch CommentPatch) error
	DeleteComment(ctx context.Context, ref CommentRef) error
	AddReplyCount(ctx context.Context, ref CommentRef, delta int) error
	CreateReply(ctx context.Context, ref CommentRef, r *Reply) error
	ListReplies(ctx context.Context, ref CommentRef) ([]Reply, error)

	// Chat. Deleting a channel deletes its messages.
	CreateChannel(ctx context.Context, ch *Channel) error
	LoadChannel(ctx context.Context, bandID, channelID string) (*Channel, error)
	ListChannels(ctx context.Context, bandID string) ([]Channel, error)
	DeleteChannel(ctx context.Context, bandID, channelID string) error
	CreateMessage(ctx context.Context, bandID string, m *Message) error
	ListMessages(ctx context.Context, bandID, channelID string, limit int) ([]Message, error)

	// Calendar
	CreateEvent(ctx context.Context, ev *Event) error
	ListEvents(ctx context.Context, bandID string) ([]Event, error)
	UpdateEvent(ctx context.Context, bandID, eventID string, in EventInput) error
	SetRSVP(ctx context.Context, bandID, eventID, uid, status string) error
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func noRows(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(msg)
	}
	return upstream("database error", err)
}

func affected(tag pgconn.CommandTag, err error, msg string) error {
	if err != nil {
		return upstream("database error", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(msg)
	}
	return nil
}

// --- bands ---

func (s *PostgresStore) CreateBand(ctx context.Context, b *Band, creatorUID string) error {
	creator := b.Members[creatorUID]
	_, err := s.db.Exec(ctx, `
        WITH b AS (
            INSERT INTO bands(id, name, created_by, created_at, invite_code)
            VALUES($1,$2,$3,$4,$5)
            RETURNING id
        )
        INSERT INTO band_members(band_id, user_id, role, display_name, joined_at)
        SELECT id, $3, $6, $7, $8 FROM b
    `, b.ID, b.Name, creatorUID, b.CreatedAt, b.InviteCode, creator.Role, creator.DisplayName, creator.JoinedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) LoadBand(ctx context.Context, id string) (*Band, error) {
	var b Band
	err := s.db.QueryRow(ctx, `
        SELECT id, name, created_by, created_at, invite_code
        FROM bands WHERE id=$1
    `, id).Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &b.InviteCode)
	if err != nil {
		return nil, noRows(err, "band not found")
	}
	members, err := s.loadMembers(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Members = members[b.ID]
	if b.Members == nil {
		b.Members = map[string]Membership{}
	}
	return &b, nil
}

// FindBandByInviteCode returns the oldest band holding code. Codes are not
// unique-indexed; on a collision the first band created wins.
func (s *PostgresStore) FindBandByInviteCode(ctx context.Context, code string) (*Band, error) {
	var id string
	err := s.db.QueryRow(ctx, `
        SELECT id FROM bands
        WHERE invite_code=$1
        ORDER BY created_at ASC
        LIMIT 1
    `, code).Scan(&id)
	if err != nil {
		return nil, noRows(err, "invalid invite code")
	}
	return s.LoadBand(ctx, id)
}

func (s *PostgresStore) ListBandsForUser(ctx context.Context, uid string) ([]Band, error) {
	rows, err := s.db.Query(ctx, `
        SELECT b.id, b.name, b.created_by, b.created_at, b.invite_code
        FROM bands b
        JOIN band_members m ON m.band_id = b.id
        WHERE m.user_id = $1
        ORDER BY b.created_at DESC
    `, uid)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	bands := []Band{}
	ids := []string{}
	for rows.Next() {
		var b Band
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &b.InviteCode); err != nil {
			return nil, upstream("database error", err)
		}
		bands = append(bands, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	if len(ids) == 0 {
		return bands, nil
	}

	members, err := s.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bands {
		bands[i].Members = members[bands[i].ID]
	}
	return bands, nil
}

func (s *PostgresStore) loadMembers(ctx context.Context, bandIDs []string) (map[string]map[string]Membership, error) {
	rows, err := s.db.Query(ctx, `
        SELECT band_id, user_id, role, display_name, joined_at
        FROM band_members
        WHERE band_id = ANY($1)
    `, bandIDs)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := map[string]map[string]Membership{}
	for rows.Next() {
		var bandID, uid string
		var m Membership
		if err := rows.Scan(&bandID, &uid, &m.Role, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, upstream("database error", err)
		}
		if out[bandID] == nil {
			out[bandID] = map[string]Membership{}
		}
		out[bandID][uid] = m
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

// UpsertMember overwrites role, display name and joinedAt for an existing
// member.
func (s *PostgresStore) UpsertMember(ctx context.Context, bandID, uid string, m Membership) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO band_members(band_id, user_id, role, display_name, joined_at)
        VALUES($1,$2,$3,$4,$5)
        ON CONFLICT (band_id, user_id) DO UPDATE
        SET role = EXCLUDED.role,
            display_name = EXCLUDED.display_name,
            joined_at = EXCLUDED.joined_at
    `, bandID, uid, m.Role, m.DisplayName, m.JoinedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) SetInviteCode(ctx context.Context, bandID, code string) error {
	tag, err := s.db.Exec(ctx, `UPDATE bands SET invite_code=$2 WHERE id=$1`, bandID, code)
	return affected(tag, err, "band not found")
}

// --- media ---

func (s *PostgresStore) CreateMedia(ctx context.Context, m *Media) error {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO media(id, band_id, name, type, mime_type, blob_path, size, tags,
                          project, uploaded_by, uploaded_at, comment_count, duration, peaks)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    `, m.ID, m.BandID, m.Name, m.Type, m.MimeType, m.BlobPath, m.Size, tags,
		m.Project, m.UploadedBy, m.UploadedAt, m.CommentCount, m.Duration, m.Peaks)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) LoadMedia(ctx context.Context, ref MediaRef) (*Media, error) {
	var m Media
	err := s.db.QueryRow(ctx, `
        SELECT id, band_id, name, type, mime_type, blob_path, size, tags,
               project, uploaded_by, uploaded_at, comment_count, duration, peaks
        FROM media WHERE band_id=$1 AND id=$2
    `, ref.BandID, ref.MediaID).Scan(
		&m.ID, &m.BandID, &m.Name, &m.Type, &m.MimeType, &m.BlobPath, &m.Size, &m.Tags,
		&m.Project, &m.UploadedBy, &m.UploadedAt, &m.CommentCount, &m.Duration, &m.Peaks,
	)
	if err != nil {
		return nil, noRows(err, "media not found")
	}
	return &m, nil
}

// ListMedia never selects peaks.
func (s *PostgresStore) ListMedia(ctx context.Context, bandID, mediaType string) ([]Media, error) {
	query := `
        SELECT id, band_id, name, type, mime_type, blob_path, size, tags,
               project, uploaded_by, uploaded_at, comment_count, duration
        FROM media WHERE band_id=$1`
	args := []any{bandID}
	if mediaType != "" {
		query += ` AND type=$2`
		args = append(args, mediaType)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Media{}
	for rows.Next() {
		var m Media
		if err := rows.Scan(
			&m.ID, &m.BandID, &m.Name, &m.Type, &m.MimeType, &m.BlobPath, &m.Size, &m.Tags,
			&m.Project, &m.UploadedBy, &m.UploadedAt, &m.CommentCount, &m.Duration,
		); err != nil {
			return nil, upstream("database error", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateMedia(ctx context.Context, ref MediaRef, patch MediaPatch) error {
	if patch.empty() {
		return nil
	}
	set := []string{}
	args := []any{ref.BandID, ref.MediaID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		add("tags", tags)
	}
	if patch.Project != nil {
		add("project", *patch.Project)
	}
	tag, err := s.db.Exec(ctx,
		"UPDATE media SET "+strings.Join(set, ", ")+" WHERE band_id=$1 AND id=$2", args...)
	return affected(tag, err, "media not found")
}

func (s *PostgresStore) DeleteMedia(ctx context.Context, ref MediaRef) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media WHERE band_id=$1 AND id=$2`, ref.BandID, ref.MediaID)
	return affected(tag, err, "media not found")
}

func (s *PostgresStore) AddCommentCount(ctx context.Context, ref MediaRef, delta int) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE media SET comment_count = comment_count + $3
        WHERE band_id=$1 AND id=$2
    `, ref.BandID, ref.MediaID, delta)
	return affected(tag, err, "media not found")
}

// --- comments ---

func (s *PostgresStore) CreateComment(ctx context.Context, ref MediaRef, c *Comment) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO comments(id, band_id, media_id, timestamp, text, author_uid,
                             author_display_name, created_at, resolved, reply_count)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, c.ID, ref.BandID, ref.MediaID, c.Timestamp, c.Text, c.AuthorUID,
		c.AuthorDisplayName, c.CreatedAt, c.Resolved, c.ReplyCount)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) LoadComment(ctx context.Context, ref CommentRef) (*Comment, error) {
	var c Comment
	err := s.db.QueryRow(ctx, `
        SELECT id, media_id, timestamp, text, author_uid, author_display_name,
               created_at, resolved, reply_count
        FROM comments WHERE band_id=$1 AND media_id=$2 AND id=$3
    `, ref.BandID, ref.MediaID, ref.CommentID).Scan(
		&c.ID, &c.MediaID, &c.Timestamp, &c.Text, &c.AuthorUID, &c.AuthorDisplayName,
		&c.CreatedAt, &c.Resolved, &c.ReplyCount,
	)
	if err != nil {
		return nil, noRows(err, "comment not found")
	}
	return &c, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, ref MediaRef) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, media_id, timestamp, text, author_uid, author_display_name,
               created_at, resolved, reply_count
        FROM comments WHERE band_id=$1 AND media_id=$2
        ORDER BY timestamp ASC, created_at ASC
    `, ref.BandID, ref.MediaID)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.ID, &c.MediaID, &c.Timestamp, &c.Text, &c.AuthorUID, &c.AuthorDisplayName,
			&c.CreatedAt, &c.Resolved, &c.ReplyCount,
		); err != nil {
			return nil, upstream("database error", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateComment(ctx context.Context, ref CommentRef, patch CommentPatch) error {
	if patch.empty() {
		return nil
	}
	set := []string{}
	args := []any{ref.BandID, ref.MediaID, ref.CommentID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Resolved != nil {
		add("resolved", *patch.Resolved)
	}
	if patch.Text != nil {
		add("text", *patch.Text)
	}
	tag, err := s.db.Exec(ctx,
		"UPDATE comments SET "+strings.Join(set, ", ")+" WHERE band_id=$1 AND media_id=$2 AND id=$3", args...)
	return affected(tag, err, "comment not found")
}

// DeleteComment removes only the comment row; its replies stay.
func (s *PostgresStore) DeleteComment(ctx context.Context, ref CommentRef) error {
	tag, err := s.db.Exec(ctx, `
        DELETE FROM comments WHERE band_id=$1 AND media_id=$2 AND id=$3
    `, ref.BandID, ref.MediaID, ref.CommentID)
	return affected(tag, err, "comment not found")
}

func (s *PostgresStore) AddReplyCount(ctx context.Context, ref CommentRef, delta int) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE comments SET reply_count = reply_count + $4
        WHERE band_id=$1 AND media_id=$2 AND id=$3
    `, ref.BandID, ref.MediaID, ref.CommentID, delta)
	return affected(tag, err, "comment not found")
}

func (s *PostgresStore) CreateReply(ctx context.Context, ref CommentRef, r *Reply) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO replies(id, band_id, media_id, comment_id, text, author_uid,
                            author_display_name, created_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8)
    `, r.ID, ref.BandID, ref.MediaID, ref.CommentID, r.Text, r.AuthorUID,
		r.AuthorDisplayName, r.CreatedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) ListReplies(ctx context.Context, ref CommentRef) ([]Reply, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, comment_id, text, author_uid, author_display_name, created_at
        FROM replies WHERE band_id=$1 AND media_id=$2 AND comment_id=$3
        ORDER BY created_at ASC
    `, ref.BandID, ref.MediaID, ref.CommentID)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Reply{}
	for rows.Next() {
		var r Reply
		if err := rows.Scan(&r.ID, &r.CommentID, &r.Text, &r.AuthorUID, &r.AuthorDisplayName, &r.CreatedAt); err != nil {
			return nil, upstream("database error", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

// --- chat ---

func (s *PostgresStore) CreateChannel(ctx context.Context, ch *Channel) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO channels(id, band_id, name, created_by, created_at)
        VALUES($1,$2,$3,$4,$5)
    `, ch.ID, ch.BandID, ch.Name, ch.CreatedBy, ch.CreatedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) LoadChannel(ctx context.Context, bandID, channelID string) (*Channel, error) {
	var ch Channel
	err := s.db.QueryRow(ctx, `
        SELECT id, band_id, name, created_by, created_at
        FROM channels WHERE band_id=$1 AND id=$2
    `, bandID, channelID).Scan(&ch.ID, &ch.BandID, &ch.Name, &ch.CreatedBy, &ch.CreatedAt)
	if err != nil {
		return nil, noRows(err, "channel not found")
	}
	return &ch, nil
}

func (s *PostgresStore) ListChannels(ctx context.Context, bandID string) ([]Channel, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, band_id, name, created_by, created_at
        FROM channels WHERE band_id=$1
        ORDER BY name ASC, created_at ASC
    `, bandID)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Channel{}
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.ID, &ch.BandID, &ch.Name, &ch.CreatedBy, &ch.CreatedAt); err != nil {
			return nil, upstream("database error", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

// DeleteChannel relies on the messages foreign key cascade.
func (s *PostgresStore) DeleteChannel(ctx context.Context, bandID, channelID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM channels WHERE band_id=$1 AND id=$2`, bandID, channelID)
	return affected(tag, err, "channel not found")
}

func (s *PostgresStore) CreateMessage(ctx context.Context, bandID string, m *Message) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO messages(id, band_id, channel_id, text, author_uid, author_display_name, created_at)
        VALUES($1,$2,$3,$4,$5,$6,$7)
    `, m.ID, bandID, m.ChannelID, m.Text, m.AuthorUID, m.AuthorDisplayName, m.CreatedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

// ListMessages returns the newest limit messages in ascending order.
func (s *PostgresStore) ListMessages(ctx context.Context, bandID, channelID string, limit int) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, channel_id, text, author_uid, author_display_name, created_at
        FROM (
            SELECT id, channel_id, text, author_uid, author_display_name, created_at
            FROM messages WHERE band_id=$1 AND channel_id=$2
            ORDER BY created_at DESC
            LIMIT $3
        ) recent
        ORDER BY created_at ASC
    `, bandID, channelID, limit)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.Text, &m.AuthorUID, &m.AuthorDisplayName, &m.CreatedAt); err != nil {
			return nil, upstream("database error", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

// --- calendar ---

func (s *PostgresStore) CreateEvent(ctx context.Context, ev *Event) error {
	rsvp, err := json.Marshal(ev.RSVP)
	if err != nil {
		return upstream("encode rsvp", err)
	}
	linked := ev.LinkedMedia
	if linked == nil {
		linked = []string{}
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO events(id, band_id, title, type, start_at, end_at, location,
                           description, linked_media, rsvp, created_by, created_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, ev.ID, ev.BandID, ev.Title, ev.Type, ev.Start, ev.End, ev.Location,
		ev.Description, linked, rsvp, ev.CreatedBy, ev.CreatedAt)
	if err != nil {
		return upstream("database error", err)
	}
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, bandID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, band_id, title, type, start_at, end_at, location, description,
               linked_media, rsvp, created_by, created_at
        FROM events WHERE band_id=$1
        ORDER BY start_at ASC
    `, bandID)
	if err != nil {
		return nil, upstream("database error", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var ev Event
		var rsvp []byte
		if err := rows.Scan(
			&ev.ID, &ev.BandID, &ev.Title, &ev.Type, &ev.Start, &ev.End, &ev.Location, &ev.Description,
			&ev.LinkedMedia, &rsvp, &ev.CreatedBy, &ev.CreatedAt,
		); err != nil {
			return nil, upstream("database error", err)
		}
		if err := json.Unmarshal(rsvp, &ev.RSVP); err != nil {
			ev.RSVP = map[string]string{}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("database error", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, bandID, eventID string, in EventInput) error {
	linked := in.LinkedMedia
	if linked == nil {
		linked = []string{}
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE events
        SET title=$3, type=$4, start_at=$5, end_at=$6, location=$7, description=$8, linked_media=$9
        WHERE band_id=$1 AND id=$2
    `, bandID, eventID, in.Title, in.Type, in.Start, in.End, in.Location, in.Description, linked)
	return affected(tag, err, "event not found")
}

// SetRSVP writes one key of the rsvp document in place.
func (s *PostgresStore) SetRSVP(ctx context.Context, bandID, eventID, uid, status string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE events
        SET rsvp = jsonb_set(rsvp, ARRAY[$3::text], to_jsonb($4::text), true)
        WHERE band_id=$1 AND id=$2
    `, bandID, eventID, uid, status)
	return affected(tag, err, "event not found")
}
