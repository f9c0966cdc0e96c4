package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Foreign keys are enabled so deleting a brand cascades to its pitches.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL,
	email            TEXT NOT NULL UNIQUE,
	website          TEXT NOT NULL DEFAULT '',
	instagram        TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'not_contacted',
	discovered_by_ai INTEGER NOT NULL DEFAULT 0,
	discovered_at    DATETIME,
	last_pitched_at  DATETIME,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	name                   TEXT NOT NULL,
	age                    INTEGER,
	sender_email           TEXT NOT NULL,
	tiktok_url             TEXT NOT NULL DEFAULT '',
	instagram_url          TEXT NOT NULL DEFAULT '',
	youtube_url            TEXT NOT NULL DEFAULT '',
	portfolio_url          TEXT NOT NULL DEFAULT '',
	follower_count         INTEGER NOT NULL DEFAULT 0,
	avg_views              INTEGER NOT NULL DEFAULT 0,
	engagement_rate        REAL NOT NULL DEFAULT 0,
	niches                 TEXT NOT NULL DEFAULT '[]',
	interests              TEXT NOT NULL DEFAULT '[]',
	bio                    TEXT NOT NULL DEFAULT '',
	content_style          TEXT NOT NULL DEFAULT '',
	unique_angle           TEXT NOT NULL DEFAULT '',
	top_performing_content TEXT NOT NULL DEFAULT '',
	pitch_template         TEXT NOT NULL DEFAULT '',
	created_at             DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pitches (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	brand_id       INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	profile_id     INTEGER NOT NULL REFERENCES profiles(id),
	subject        TEXT NOT NULL,
	body           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'draft',
	mode           TEXT NOT NULL DEFAULT 'manual',
	auto_approved  INTEGER NOT NULL DEFAULT 0,
	tracking_token TEXT UNIQUE,
	sent_at        DATETIME,
	opened_at      DATETIME,
	clicked_at     DATETIME,
	replied_at     DATETIME,
	reply_notes    TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_brands_status ON brands(status);
CREATE INDEX IF NOT EXISTS idx_brands_category ON brands(category);
CREATE INDEX IF NOT EXISTS idx_pitches_brand_id ON pitches(brand_id);
CREATE INDEX IF NOT EXISTS idx_pitches_status ON pitches(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const brandColumns = `id, name, email, website, instagram, category, notes, status,
	discovered_by_ai, discovered_at, last_pitched_at, created_at, updated_at`

func (s *SQLiteStore) CreateBrand(ctx context.Context, in model.BrandInput) (*model.Brand, error) {
	now := time.Now().UTC()
	email := model.NormalizeEmail(in.Email)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO brands (name, email, website, instagram, category, notes, status,
			discovered_by_ai, discovered_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, email, in.Website, in.Instagram, in.Category, in.Notes,
		model.BrandStatusNotContacted, in.DiscoveredByAI, in.DiscoveredAt, now, now,
	)
	if err != nil {
		if isSQLiteUnique(err, "brands.email") {
			return nil, eris.Wrap(ErrDuplicateBrand, email)
		}
		return nil, eris.Wrap(err, "sqlite: insert brand")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: brand last insert id")
	}
	return s.GetBrand(ctx, id)
}

func (s *SQLiteStore) GetBrand(ctx context.Context, id int64) (*model.Brand, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = ?`, id)
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get brand")
	}
	return b, nil
}

func (s *SQLiteStore) GetBrandByEmail(ctx context.Context, email string) (*model.Brand, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE email = ?`, model.NormalizeEmail(email))
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get brand by email")
	}
	return b, nil
}

func (s *SQLiteStore) ListBrands(ctx context.Context, filter BrandFilter) ([]model.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list brands")
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan brand")
		}
		brands = append(brands, *b)
	}
	return brands, eris.Wrap(rows.Err(), "sqlite: list brands iterate")
}

func (s *SQLiteStore) UpdateBrand(ctx context.Context, id int64, upd model.BrandUpdate) (*model.Brand, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	apply := func(col string, val *string) {
		if val != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *val)
		}
	}
	apply("name", upd.Name)
	if upd.Email != nil {
		normalized := model.NormalizeEmail(*upd.Email)
		upd.Email = &normalized
	}
	apply("email", upd.Email)
	apply("website", upd.Website)
	apply("instagram", upd.Instagram)
	apply("category", upd.Category)
	apply("notes", upd.Notes)
	apply("status", upd.Status)

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE brands SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isSQLiteUnique(err, "brands.email") {
			return nil, ErrDuplicateBrand
		}
		return nil, eris.Wrapf(err, "sqlite: update brand %d", id)
	}
	if err := requireRows(res); err != nil {
		return nil, err
	}
	return s.GetBrand(ctx, id)
}

func (s *SQLiteStore) DeleteBrand(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete brand %d", id)
	}
	return requireRows(res)
}

func (s *SQLiteStore) MarkBrandPitched(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brands SET status = ?, last_pitched_at = ?, updated_at = ? WHERE id = ?`,
		model.BrandStatusPitched, at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark brand pitched %d", id)
	}
	return requireRows(res)
}

const profileColumns = `id, name, age, sender_email, tiktok_url, instagram_url, youtube_url,
	portfolio_url, follower_count, avg_views, engagement_rate, niches, interests, bio,
	content_style, unique_angle, top_performing_content, pitch_template, created_at, updated_at`

func (s *SQLiteStore) CreateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	now := time.Now().UTC()
	niches, interests, err := marshalLists(in.Niches, in.Interests)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, age, sender_email, tiktok_url, instagram_url,
			youtube_url, portfolio_url, follower_count, avg_views, engagement_rate,
			niches, interests, bio, content_style, unique_angle, top_performing_content,
			pitch_template, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.ProfileSingletonID, in.Name, in.Age, model.NormalizeEmail(in.SenderEmail),
		in.TikTokURL, in.InstagramURL, in.YouTubeURL, in.PortfolioURL,
		in.FollowerCount, in.AvgViews, in.EngagementRate, niches, interests,
		in.Bio, in.ContentStyle, in.UniqueAngle, in.TopPerformingContent,
		in.PitchTemplate, now, now,
	)
	if err != nil {
		if isSQLiteUnique(err, "profiles.id") {
			return nil, ErrProfileExists
		}
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}
	return s.GetProfile(ctx)
}

func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, model.ProfileSingletonID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get profile")
	}
	return p, nil
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	niches, interests, err := marshalLists(in.Niches, in.Interests)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET name = ?, age = ?, sender_email = ?, tiktok_url = ?,
			instagram_url = ?, youtube_url = ?, portfolio_url = ?, follower_count = ?,
			avg_views = ?, engagement_rate = ?, niches = ?, interests = ?, bio = ?,
			content_style = ?, unique_angle = ?, top_performing_content = ?,
			pitch_template = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Age, model.NormalizeEmail(in.SenderEmail), in.TikTokURL,
		in.InstagramURL, in.YouTubeURL, in.PortfolioURL, in.FollowerCount,
		in.AvgViews, in.EngagementRate, niches, interests, in.Bio,
		in.ContentStyle, in.UniqueAngle, in.TopPerformingContent,
		in.PitchTemplate, time.Now().UTC(), model.ProfileSingletonID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: update profile")
	}
	if err := requireRows(res); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx)
}

const pitchColumns = `id, brand_id, profile_id, subject, body, status, mode, auto_approved,
	tracking_token, sent_at, opened_at, clicked_at, replied_at, reply_notes, created_at, updated_at`

func (s *SQLiteStore) CreatePitch(ctx context.Context, in model.PitchInput) (*model.Pitch, error) {
	now := time.Now().UTC()
	mode := in.Mode
	if mode == "" {
		mode = model.PitchModeManual
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pitches (brand_id, profile_id, subject, body, status, mode,
			auto_approved, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.BrandID, in.ProfileID, in.Subject, in.Body, model.PitchStatusDraft,
		mode, in.AutoApproved, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert pitch")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: pitch last insert id")
	}
	return s.GetPitch(ctx, id)
}

func (s *SQLiteStore) GetPitch(ctx context.Context, id int64) (*model.Pitch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pitchColumns+` FROM pitches WHERE id = ?`, id)
	p, err := scanPitch(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get pitch")
	}
	return p, nil
}

func (s *SQLiteStore) GetPitchByToken(ctx context.Context, token string) (*model.Pitch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pitchColumns+` FROM pitches WHERE tracking_token = ?`, token)
	p, err := scanPitch(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get pitch by token")
	}
	return p, nil
}

func (s *SQLiteStore) ListPitches(ctx context.Context, filter PitchFilter) ([]model.Pitch, error) {
	query := `SELECT ` + pitchColumns + ` FROM pitches WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.BrandID != 0 {
		query += ` AND brand_id = ?`
		args = append(args, filter.BrandID)
	}
	if filter.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, string(filter.Mode))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pitches")
	}
	defer rows.Close()

	var pitches []model.Pitch
	for rows.Next() {
		p, err := scanPitch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pitch")
		}
		pitches = append(pitches, *p)
	}
	return pitches, eris.Wrap(rows.Err(), "sqlite: list pitches iterate")
}

// MarkPitchSent is the draft->sent transition. The WHERE status = 'draft'
// clause is the race-safe guard: only one concurrent sender observes a row
// change, everyone else gets ErrNotDraft.
func (s *SQLiteStore) MarkPitchSent(ctx context.Context, id int64, token string, at time.Time) (*model.Pitch, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pitches SET status = ?, tracking_token = ?, sent_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		model.PitchStatusSent, token, at.UTC(), time.Now().UTC(), id, model.PitchStatusDraft,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: mark pitch sent %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		if _, getErr := s.GetPitch(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotDraft
	}
	return s.GetPitch(ctx, id)
}

func (s *SQLiteStore) RecordPitchOpened(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return s.recordEvent(ctx, "opened_at", token, at)
}

func (s *SQLiteStore) RecordPitchClicked(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return s.recordEvent(ctx, "clicked_at", token, at)
}

// recordEvent sets an engagement timestamp only if currently null, in one
// conditional update, so concurrent duplicate beacon hits keep the first
// value. Zero rows affected is fine: either the event already happened or
// the token is unknown, and the follow-up lookup distinguishes the two.
func (s *SQLiteStore) recordEvent(ctx context.Context, column, token string, at time.Time) (*model.Pitch, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pitches SET `+column+` = ?, updated_at = ?
		 WHERE tracking_token = ? AND `+column+` IS NULL`,
		at.UTC(), time.Now().UTC(), token,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: record %s", column)
	}
	return s.GetPitchByToken(ctx, token)
}

func (s *SQLiteStore) RecordPitchReplied(ctx context.Context, id int64, notes string, at time.Time) (*model.Pitch, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pitches SET replied_at = ?, reply_notes = ?, updated_at = ?
		 WHERE id = ? AND replied_at IS NULL`,
		at.UTC(), notes, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: record reply %d", id)
	}
	return s.GetPitch(ctx, id)
}

// helpers

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isSQLiteUnique reports whether err is a UNIQUE or PRIMARY KEY constraint
// violation on the given "table.column". modernc.org/sqlite surfaces these
// as formatted driver errors, so this matches on the constraint text.
func isSQLiteUnique(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed: "+constraint) ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, constraint)
}

func marshalLists(niches, interests []string) (string, string, error) {
	if niches == nil {
		niches = []string{}
	}
	if interests == nil {
		interests = []string{}
	}
	nb, err := json.Marshal(niches)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal niches")
	}
	ib, err := json.Marshal(interests)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal interests")
	}
	return string(nb), string(ib), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBrand(row scannable) (*model.Brand, error) {
	var b model.Brand
	var discoveredAt, lastPitchedAt sql.NullTime

	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.Website, &b.Instagram, &b.Category,
		&b.Notes, &b.Status, &b.DiscoveredByAI, &discoveredAt, &lastPitchedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if discoveredAt.Valid {
		t := discoveredAt.Time
		b.DiscoveredAt = &t
	}
	if lastPitchedAt.Valid {
		t := lastPitchedAt.Time
		b.LastPitchedAt = &t
	}
	return &b, nil
}

func scanProfile(row scannable) (*model.Profile, error) {
	var p model.Profile
	var age sql.NullInt64
	var niches, interests string

	err := row.Scan(&p.ID, &p.Name, &age, &p.SenderEmail, &p.TikTokURL, &p.InstagramURL,
		&p.YouTubeURL, &p.PortfolioURL, &p.FollowerCount, &p.AvgViews, &p.EngagementRate,
		&niches, &interests, &p.Bio, &p.ContentStyle, &p.UniqueAngle,
		&p.TopPerformingContent, &p.PitchTemplate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if err := json.Unmarshal([]byte(niches), &p.Niches); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal niches")
	}
	if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal interests")
	}
	return &p, nil
}

func scanPitch(row scannable) (*model.Pitch, error) {
	var p model.Pitch
	var token sql.NullString
	var sentAt, openedAt, clickedAt, repliedAt sql.NullTime

	err := row.Scan(&p.ID, &p.BrandID, &p.ProfileID, &p.Subject, &p.Body, &p.Status,
		&p.Mode, &p.AutoApproved, &token, &sentAt, &openedAt, &clickedAt, &repliedAt,
		&p.ReplyNotes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		t := token.String
		p.TrackingToken = &t
	}
	setTime := func(dst **time.Time, src sql.NullTime) {
		if src.Valid {
			t := src.Time
			*dst = &t
		}
	}
	setTime(&p.SentAt, sentAt)
	setTime(&p.OpenedAt, openedAt)
	setTime(&p.ClickedAt, clickedAt)
	setTime(&p.RepliedAt, repliedAt)
	return &p, nil
}
