package artistry

import (
	"io"
	"time"
)

// Request DTOs

// FileUpload is an incoming image that already passed the upload gate
// (multipart parsing, MIME and size checks). The service stages it through
// the blob store before the database transaction opens.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// CreateArtistRequest contains parameters for creating a new artist.
// Name and StageName are required.
type CreateArtistRequest struct {
	Name            string
	StageName       string
	AlbumCount      int
	Label           *string
	Publisher       *string
	CareerStartDate *time.Time
	SocialNetworks  []string
	Image           *FileUpload
}

// UpdateArtistRequest contains parameters for updating an artist. Mutable
// columns are fully replaced. A nil SocialNetworks leaves the link set
// untouched; a non-nil slice (including an empty one) replaces it wholesale.
// The image column changes only when Image carries a new file.
type UpdateArtistRequest struct {
	Name            string
	StageName       string
	AlbumCount      int
	Label           *string
	Publisher       *string
	CareerStartDate *time.Time
	SocialNetworks  []string
	Image           *FileUpload
}

// ListArtistsRequest contains paging parameters for listing artists.
// Page defaults to 1 and Limit to 10 when out of range.
type ListArtistsRequest struct {
	Page  int
	Limit int
}

// RateArtistRequest contains parameters for rating an artist. Score must be
// in [0, 5]; a second rating from the same user overwrites the first.
type RateArtistRequest struct {
	ArtistID int64
	UserID   string
	Score    float64
}
