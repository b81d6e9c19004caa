package artistry

import "context"

// Service is the artist resource lifecycle manager: create, read, update,
// delete, search and rate, with blob compensation around every write that
// involves a staged image.
type Service interface {
	// CreateArtist validates, stages the optional image, writes the artist
	// and its links in one transaction, and returns the new id. On failure
	// the staged image is discarded.
	CreateArtist(ctx context.Context, req CreateArtistRequest) (int64, error)

	// GetArtist returns the shaped view for one artist, or (nil, nil) when
	// no artist matches.
	GetArtist(ctx context.Context, id int64) (*ArtistView, error)

	// ListArtists returns one page of artists ordered by id descending plus
	// pagination metadata.
	ListArtists(ctx context.Context, req ListArtistsRequest) (*ArtistPage, error)

	// UpdateArtist replaces the artist's mutable fields (and link set when
	// supplied) and reports whether a row was affected. A replaced image is
	// deleted only after the new state is committed.
	UpdateArtist(ctx context.Context, id int64, req UpdateArtistRequest) (bool, error)

	// DeleteArtist removes the artist and its dependent rows, then deletes
	// the image blob best-effort, and reports whether a row was removed.
	DeleteArtist(ctx context.Context, id int64) (bool, error)

	// SearchArtists returns shaped views whose name or stage name contains
	// query, case-insensitively, bounded by limit.
	SearchArtists(ctx context.Context, query string, limit int) ([]ArtistView, error)

	// RateArtist upserts one user's score for an artist and returns the
	// freshly recomputed aggregate.
	RateArtist(ctx context.Context, req RateArtistRequest) (*RatingSummary, error)

	// GetArtistRating returns the current rating aggregate for an artist.
	GetArtistRating(ctx context.Context, artistID int64) (*RatingSummary, error)
}
