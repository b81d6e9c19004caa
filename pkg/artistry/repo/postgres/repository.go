package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soundstage/artistry/pkg/artistry"
)

// Repository implements artistry.Repository using PostgreSQL. Every
// multi-statement operation runs in its own transaction; connection
// acquisition is bounded so pool exhaustion surfaces as an error instead of
// blocking forever.
type Repository struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

const defaultAcquireTimeout = 5 * time.Second

// New creates a new PostgreSQL repository on top of a bounded connection pool
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, acquireTimeout: defaultAcquireTimeout}
}

// NewWithAcquireTimeout creates a repository with a custom bound on how long
// an operation may wait for a pooled connection.
func NewWithAcquireTimeout(pool *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{pool: pool, acquireTimeout: timeout}
}

// begin opens a transaction, bounding the wait for a pooled connection. A
// deadline hit while the caller's context is still live means the pool is
// saturated, not that the caller gave up.
func (r *Repository) begin(ctx context.Context) (pgx.Tx, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	defer cancel()

	tx, err := r.pool.Begin(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, artistry.ErrTooManyOperations
		}
		return nil, err
	}
	return tx, nil
}

// translateError maps raw driver errors onto the store's error taxonomy
func translateError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
			return &artistry.ConstraintError{Constraint: pgErr.ConstraintName, Err: err}
		case pgerrcode.NotNullViolation:
			return &artistry.ConstraintError{Constraint: pgErr.ColumnName, Err: err}
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return artistry.ErrArtistNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const artistRowSelect = `
	SELECT a.id, a.name, a.stage_name, a.album_count, a.label, a.publisher,
	       a.career_start_date, a.image,
	       COALESCE(AVG(r.score), 0)::float8 AS rating,
	       COUNT(DISTINCT r.user_id) AS rating_count,
	       COALESCE(array_agg(DISTINCT sn.network_url) FILTER (WHERE sn.network_url IS NOT NULL), '{}') AS social_networks
	FROM artists a
	LEFT JOIN ratings r ON r.artist_id = a.id
	LEFT JOIN social_networks sn ON sn.artist_id = a.id`

func scanArtistRow(row pgx.Row) (*artistry.ArtistRow, error) {
	var ar artistry.ArtistRow
	err := row.Scan(
		&ar.ID, &ar.Name, &ar.StageName, &ar.AlbumCount, &ar.Label, &ar.Publisher,
		&ar.CareerStartDate, &ar.Image,
		&ar.Rating, &ar.RatingCount, &ar.SocialNetworks)
	if err != nil {
		return nil, err
	}
	return &ar, nil
}

func (r *Repository) CreateArtist(ctx context.Context, artist *artistry.Artist, links []string) (int64, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO artists (name, stage_name, album_count, label, publisher, career_start_date, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		artist.Name, artist.StageName, artist.AlbumCount, artist.Label,
		artist.Publisher, artist.CareerStartDate, artist.Image).Scan(&id)
	if err != nil {
		return 0, translateError("create artist", err)
	}

	if err := replaceLinks(ctx, tx, id, links); err != nil {
		return 0, translateError("create artist links", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, translateError("create artist", err)
	}

	return id, nil
}

// replaceLinks swaps an artist's whole link set inside the caller's
// transaction: wholesale replace, never a merge.
func replaceLinks(ctx context.Context, tx pgx.Tx, artistID int64, links []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM social_networks WHERE artist_id = $1`, artistID); err != nil {
		return err
	}
	for _, url := range links {
		if _, err := tx.Exec(ctx,
			`INSERT INTO social_networks (artist_id, network_url) VALUES ($1, $2)`,
			artistID, url); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetArtistRow(ctx context.Context, id int64) (*artistry.ArtistRow, error) {
	row := r.pool.QueryRow(ctx, artistRowSelect+` WHERE a.id = $1 GROUP BY a.id`, id)

	ar, err := scanArtistRow(row)
	if err != nil {
		return nil, translateError("get artist", err)
	}
	return ar, nil
}

func (r *Repository) ListArtistRows(ctx context.Context, limit, offset int) ([]artistry.ArtistRow, error) {
	rows, err := r.pool.Query(ctx,
		artistRowSelect+` GROUP BY a.id ORDER BY a.id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, translateError("list artists", err)
	}
	defer rows.Close()

	return collectArtistRows(rows)
}

func (r *Repository) CountArtists(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM artists`).Scan(&total); err != nil {
		return 0, translateError("count artists", err)
	}
	return total, nil
}

func (r *Repository) UpdateArtist(ctx context.Context, id int64, artist *artistry.Artist, newImage *string, links []string) (*string, bool, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var prevImage *string
	err = tx.QueryRow(ctx, `SELECT image FROM artists WHERE id = $1 FOR UPDATE`, id).Scan(&prevImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translateError("update artist", err)
	}

	image := prevImage
	if newImage != nil {
		image = newImage
	}

	_, err = tx.Exec(ctx, `
		UPDATE artists
		SET name = $2, stage_name = $3, album_count = $4, label = $5,
		    publisher = $6, career_start_date = $7, image = $8
		WHERE id = $1`,
		id, artist.Name, artist.StageName, artist.AlbumCount, artist.Label,
		artist.Publisher, artist.CareerStartDate, image)
	if err != nil {
		return nil, false, translateError("update artist", err)
	}

	if links != nil {
		if err := replaceLinks(ctx, tx, id, links); err != nil {
			return nil, false, translateError("update artist links", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, translateError("update artist", err)
	}

	return prevImage, true, nil
}

func (r *Repository) DeleteArtist(ctx context.Context, id int64) (*string, bool, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var image *string
	err = tx.QueryRow(ctx, `SELECT image FROM artists WHERE id = $1 FOR UPDATE`, id).Scan(&image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translateError("delete artist", err)
	}

	// Dependent rows go first; the artists table is referenced by both.
	if _, err := tx.Exec(ctx, `DELETE FROM ratings WHERE artist_id = $1`, id); err != nil {
		return nil, false, translateError("delete artist ratings", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM social_networks WHERE artist_id = $1`, id); err != nil {
		return nil, false, translateError("delete artist links", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM artists WHERE id = $1`, id); err != nil {
		return nil, false, translateError("delete artist", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, translateError("delete artist", err)
	}

	return image, true, nil
}

func (r *Repository) UpsertRating(ctx context.Context, artistID int64, userID string, score float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ratings (artist_id, user_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (artist_id, user_id) DO UPDATE SET score = EXCLUDED.score`,
		artistID, userID, score)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			// Rating a missing artist means the target row is gone, not a
			// constraint problem for the caller.
			return artistry.ErrArtistNotFound
		}
		return translateError("rate artist", err)
	}
	return nil
}

func (r *Repository) GetRatingSummary(ctx context.Context, artistID int64) (*artistry.RatingSummary, error) {
	var summary artistry.RatingSummary
	err := r.pool.QueryRow(ctx, `
		SELECT a.id, COALESCE(AVG(r.score), 0)::float8, COUNT(DISTINCT r.user_id)
		FROM artists a
		LEFT JOIN ratings r ON r.artist_id = a.id
		WHERE a.id = $1
		GROUP BY a.id`,
		artistID).Scan(&summary.ArtistID, &summary.Average, &summary.Count)
	if err != nil {
		return nil, translateError("get artist rating", err)
	}
	return &summary, nil
}

func (r *Repository) SearchArtistRows(ctx context.Context, query string, limit int) ([]artistry.ArtistRow, error) {
	rows, err := r.pool.Query(ctx,
		artistRowSelect+`
		WHERE a.name ILIKE '%' || $1 || '%' OR a.stage_name ILIKE '%' || $1 || '%'
		GROUP BY a.id
		ORDER BY a.id
		LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, translateError("search artists", err)
	}
	defer rows.Close()

	return collectArtistRows(rows)
}

func collectArtistRows(rows pgx.Rows) ([]artistry.ArtistRow, error) {
	var out []artistry.ArtistRow
	for rows.Next() {
		ar, err := scanArtistRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ artistry.Repository = (*Repository)(nil)
