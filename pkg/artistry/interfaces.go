package artistry

import (
	"context"
	"io"
)

// BlobStore defines the interface for image blob backends.
type BlobStore interface {
	// Store persists the bytes from r under a unique generated key (keeping
	// filename's extension) and returns that key. Keys are collision-free so
	// concurrent uploads never overwrite each other.
	Store(ctx context.Context, r io.Reader, filename string) (string, error)

	// Open returns a reader over a stored blob.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored blob. Deleting a key that does not exist is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// Repository defines persistence for artists, their social-network links and
// their ratings. Methods touching more than one table are transactional: a
// failure anywhere rolls back and leaves the database unchanged.
type Repository interface {
	// CreateArtist inserts the artist row and its link rows in one
	// transaction and returns the new id.
	CreateArtist(ctx context.Context, artist *Artist, links []string) (int64, error)

	// GetArtistRow returns the joined row for one artist, or
	// ErrArtistNotFound.
	GetArtistRow(ctx context.Context, id int64) (*ArtistRow, error)

	// ListArtistRows returns up to limit joined rows ordered by id
	// descending, skipping offset rows.
	ListArtistRows(ctx context.Context, limit, offset int) ([]ArtistRow, error)

	// CountArtists returns the total number of artist rows.
	CountArtists(ctx context.Context) (int64, error)

	// UpdateArtist replaces the artist's mutable columns and, when links is
	// non-nil, its whole link set, in one transaction. newImage is the blob
	// key to store in the image column; nil keeps the current value. It
	// returns the image key the row held before the update and whether a row
	// was affected.
	UpdateArtist(ctx context.Context, id int64, artist *Artist, newImage *string, links []string) (prevImage *string, updated bool, err error)

	// DeleteArtist removes the artist's ratings, links and row, in that
	// order, in one transaction. It returns the image key the row held so
	// the caller can clean up the blob after commit.
	DeleteArtist(ctx context.Context, id int64) (image *string, deleted bool, err error)

	// UpsertRating inserts the rating for (artistID, userID) or overwrites
	// its score when one exists. Returns ErrArtistNotFound when the artist
	// does not exist.
	UpsertRating(ctx context.Context, artistID int64, userID string, score float64) error

	// GetRatingSummary returns the rating aggregate for one artist, or
	// ErrArtistNotFound.
	GetRatingSummary(ctx context.Context, artistID int64) (*RatingSummary, error)

	// SearchArtistRows returns joined rows whose name or stage name contains
	// query (case-insensitive), ordered by id for determinism, bounded by
	// limit.
	SearchArtistRows(ctx context.Context, query string, limit int) ([]ArtistRow, error)
}

// EventSink receives lifecycle notifications. Sink errors are logged by the
// service and never fail the operation that fired them.
type EventSink interface {
	// ArtistCreated is fired after an artist is created
	ArtistCreated(ctx context.Context, id int64) error

	// ArtistUpdated is fired after an artist is updated
	ArtistUpdated(ctx context.Context, id int64) error

	// ArtistDeleted is fired after an artist is deleted
	ArtistDeleted(ctx context.Context, id int64) error

	// ArtistRated is fired after a rating upsert
	ArtistRated(ctx context.Context, id int64, userID string, score float64) error
}
