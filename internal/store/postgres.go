package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (tests use pgxmock here).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL,
	email            TEXT NOT NULL UNIQUE,
	website          TEXT NOT NULL DEFAULT '',
	instagram        TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'not_contacted',
	discovered_by_ai BOOLEAN NOT NULL DEFAULT FALSE,
	discovered_at    TIMESTAMPTZ,
	last_pitched_at  TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	id                     BIGINT PRIMARY KEY CHECK (id = 1),
	name                   TEXT NOT NULL,
	age                    INT,
	sender_email           TEXT NOT NULL,
	tiktok_url             TEXT NOT NULL DEFAULT '',
	instagram_url          TEXT NOT NULL DEFAULT '',
	youtube_url            TEXT NOT NULL DEFAULT '',
	portfolio_url          TEXT NOT NULL DEFAULT '',
	follower_count         BIGINT NOT NULL DEFAULT 0,
	avg_views              BIGINT NOT NULL DEFAULT 0,
	engagement_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
	niches                 JSONB NOT NULL DEFAULT '[]',
	interests              JSONB NOT NULL DEFAULT '[]',
	bio                    TEXT NOT NULL DEFAULT '',
	content_style          TEXT NOT NULL DEFAULT '',
	unique_angle           TEXT NOT NULL DEFAULT '',
	top_performing_content TEXT NOT NULL DEFAULT '',
	pitch_template         TEXT NOT NULL DEFAULT '',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pitches (
	id             BIGSERIAL PRIMARY KEY,
	brand_id       BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	profile_id     BIGINT NOT NULL REFERENCES profiles(id),
	subject        TEXT NOT NULL,
	body           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'draft',
	mode           TEXT NOT NULL DEFAULT 'manual',
	auto_approved  BOOLEAN NOT NULL DEFAULT FALSE,
	tracking_token TEXT UNIQUE,
	sent_at        TIMESTAMPTZ,
	opened_at      TIMESTAMPTZ,
	clicked_at     TIMESTAMPTZ,
	replied_at     TIMESTAMPTZ,
	reply_notes    TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_brands_status ON brands(status);
CREATE INDEX IF NOT EXISTS idx_brands_category ON brands(category);
CREATE INDEX IF NOT EXISTS idx_pitches_brand_id ON pitches(brand_id);
CREATE INDEX IF NOT EXISTS idx_pitches_status ON pitches(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgBrandColumns = `id, name, email, website, instagram, category, notes, status,
	discovered_by_ai, discovered_at, last_pitched_at, created_at, updated_at`

func (s *PostgresStore) CreateBrand(ctx context.Context, in model.BrandInput) (*model.Brand, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO brands (name, email, website, instagram, category, notes,
			discovered_by_ai, discovered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+pgBrandColumns,
		in.Name, model.NormalizeEmail(in.Email), in.Website, in.Instagram,
		in.Category, in.Notes, in.DiscoveredByAI, in.DiscoveredAt,
	)
	b, err := scanBrand(row)
	if err != nil {
		if isPgUnique(err, "brands_email_key") {
			return nil, eris.Wrap(ErrDuplicateBrand, model.NormalizeEmail(in.Email))
		}
		return nil, eris.Wrap(err, "postgres: insert brand")
	}
	return b, nil
}

func (s *PostgresStore) GetBrand(ctx context.Context, id int64) (*model.Brand, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgBrandColumns+` FROM brands WHERE id = $1`, id)
	b, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get brand")
	}
	return b, nil
}

func (s *PostgresStore) GetBrandByEmail(ctx context.Context, email string) (*model.Brand, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgBrandColumns+` FROM brands WHERE email = $1`, model.NormalizeEmail(email))
	b, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get brand by email")
	}
	return b, nil
}

func (s *PostgresStore) ListBrands(ctx context.Context, filter BrandFilter) ([]model.Brand, error) {
	query := `SELECT ` + pgBrandColumns + ` FROM brands WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list brands")
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan brand")
		}
		brands = append(brands, *b)
	}
	return brands, eris.Wrap(rows.Err(), "postgres: list brands iterate")
}

func (s *PostgresStore) UpdateBrand(ctx context.Context, id int64, upd model.BrandUpdate) (*model.Brand, error) {
	sets := []string{"updated_at = now()"}
	var args []any

	apply := func(col string, val *string) {
		if val != nil {
			args = append(args, *val)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
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
	setClause := ""
	for i, s := range sets {
		if i > 0 {
			setClause += ", "
		}
		setClause += s
	}
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE brands SET %s WHERE id = $%d RETURNING %s`,
			setClause, len(args), pgBrandColumns),
		args...,
	)
	b, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isPgUnique(err, "brands_email_key") {
			return nil, ErrDuplicateBrand
		}
		return nil, eris.Wrapf(err, "postgres: update brand %d", id)
	}
	return b, nil
}

func (s *PostgresStore) DeleteBrand(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete brand %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkBrandPitched(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE brands SET status = $1, last_pitched_at = $2, updated_at = now() WHERE id = $3`,
		model.BrandStatusPitched, at.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark brand pitched %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const pgProfileColumns = `id, name, age, sender_email, tiktok_url, instagram_url, youtube_url,
	portfolio_url, follower_count, avg_views, engagement_rate, niches, interests, bio,
	content_style, unique_angle, top_performing_content, pitch_template, created_at, updated_at`

func (s *PostgresStore) CreateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	niches, interests, err := marshalLists(in.Niches, in.Interests)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, name, age, sender_email, tiktok_url, instagram_url,
			youtube_url, portfolio_url, follower_count, avg_views, engagement_rate,
			niches, interests, bio, content_style, unique_angle, top_performing_content,
			pitch_template)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING `+pgProfileColumns,
		model.ProfileSingletonID, in.Name, in.Age, model.NormalizeEmail(in.SenderEmail),
		in.TikTokURL, in.InstagramURL, in.YouTubeURL, in.PortfolioURL,
		in.FollowerCount, in.AvgViews, in.EngagementRate, niches, interests,
		in.Bio, in.ContentStyle, in.UniqueAngle, in.TopPerformingContent, in.PitchTemplate,
	)
	p, err := scanProfile(row)
	if err != nil {
		if isPgUnique(err, "profiles_pkey") {
			return nil, ErrProfileExists
		}
		return nil, eris.Wrap(err, "postgres: insert profile")
	}
	return p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgProfileColumns+` FROM profiles WHERE id = $1`, model.ProfileSingletonID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get profile")
	}
	return p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	niches, interests, err := marshalLists(in.Niches, in.Interests)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE profiles SET name = $1, age = $2, sender_email = $3, tiktok_url = $4,
			instagram_url = $5, youtube_url = $6, portfolio_url = $7, follower_count = $8,
			avg_views = $9, engagement_rate = $10, niches = $11, interests = $12, bio = $13,
			content_style = $14, unique_angle = $15, top_performing_content = $16,
			pitch_template = $17, updated_at = now()
		 WHERE id = $18
		 RETURNING `+pgProfileColumns,
		in.Name, in.Age, model.NormalizeEmail(in.SenderEmail), in.TikTokURL,
		in.InstagramURL, in.YouTubeURL, in.PortfolioURL, in.FollowerCount,
		in.AvgViews, in.EngagementRate, niches, interests, in.Bio,
		in.ContentStyle, in.UniqueAngle, in.TopPerformingContent, in.PitchTemplate,
		model.ProfileSingletonID,
	)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: update profile")
	}
	return p, nil
}

const pgPitchColumns = `id, brand_id, profile_id, subject, body, status, mode, auto_approved,
	tracking_token, sent_at, opened_at, clicked_at, replied_at, reply_notes, created_at, updated_at`

func (s *PostgresStore) CreatePitch(ctx context.Context, in model.PitchInput) (*model.Pitch, error) {
	mode := in.Mode
	if mode == "" {
		mode = model.PitchModeManual
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO pitches (brand_id, profile_id, subject, body, mode, auto_approved)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+pgPitchColumns,
		in.BrandID, in.ProfileID, in.Subject, in.Body, string(mode), in.AutoApproved,
	)
	p, err := scanPitch(row)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert pitch")
	}
	return p, nil
}

func (s *PostgresStore) GetPitch(ctx context.Context, id int64) (*model.Pitch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgPitchColumns+` FROM pitches WHERE id = $1`, id)
	p, err := scanPitch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get pitch")
	}
	return p, nil
}

func (s *PostgresStore) GetPitchByToken(ctx context.Context, token string) (*model.Pitch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgPitchColumns+` FROM pitches WHERE tracking_token = $1`, token)
	p, err := scanPitch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get pitch by token")
	}
	return p, nil
}

func (s *PostgresStore) ListPitches(ctx context.Context, filter PitchFilter) ([]model.Pitch, error) {
	query := `SELECT ` + pgPitchColumns + ` FROM pitches WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.BrandID != 0 {
		args = append(args, filter.BrandID)
		query += fmt.Sprintf(` AND brand_id = $%d`, len(args))
	}
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		query += fmt.Sprintf(` AND mode = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pitches")
	}
	defer rows.Close()

	var pitches []model.Pitch
	for rows.Next() {
		p, err := scanPitch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan pitch")
		}
		pitches = append(pitches, *p)
	}
	return pitches, eris.Wrap(rows.Err(), "postgres: list pitches iterate")
}

func (s *PostgresStore) MarkPitchSent(ctx context.Context, id int64, token string, at time.Time) (*model.Pitch, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE pitches SET status = $1, tracking_token = $2, sent_at = $3, updated_at = now()
		 WHERE id = $4 AND status = $5
		 RETURNING `+pgPitchColumns,
		string(model.PitchStatusSent), token, at.UTC(), id, string(model.PitchStatusDraft),
	)
	p, err := scanPitch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := s.GetPitch(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotDraft
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: mark pitch sent %d", id)
	}
	return p, nil
}

func (s *PostgresStore) RecordPitchOpened(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return s.recordEvent(ctx, "opened_at", token, at)
}

func (s *PostgresStore) RecordPitchClicked(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return s.recordEvent(ctx, "clicked_at", token, at)
}

func (s *PostgresStore) recordEvent(ctx context.Context, column, token string, at time.Time) (*model.Pitch, error) {
	_, err := s.pool.Exec(ctx,
		`UPDATE pitches SET `+column+` = $1, updated_at = now()
		 WHERE tracking_token = $2 AND `+column+` IS NULL`,
		at.UTC(), token,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: record %s", column)
	}
	return s.GetPitchByToken(ctx, token)
}

func (s *PostgresStore) RecordPitchReplied(ctx context.Context, id int64, notes string, at time.Time) (*model.Pitch, error) {
	_, err := s.pool.Exec(ctx,
		`UPDATE pitches SET replied_at = $1, reply_notes = $2, updated_at = now()
		 WHERE id = $3 AND replied_at IS NULL`,
		at.UTC(), notes, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: record reply %d", id)
	}
	return s.GetPitch(ctx, id)
}

// isPgUnique reports whether err is a unique-violation (23505) on the named
// constraint.
func isPgUnique(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}
