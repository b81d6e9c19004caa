package artistry

import "time"

// Artist is the core relational record. Image holds the blob key of the
// artist's profile picture, or nil when none was uploaded. Exactly one artist
// references a given blob key at a time.
type Artist struct {
	ID              int64
	Name            string
	StageName       string
	AlbumCount      int
	Label           *string
	Publisher       *string
	CareerStartDate *time.Time
	Image           *string
}

// ArtistRow is the raw joined row a repository read produces: the artist
// columns plus the rating aggregate and the social-network URL list, before
// any shaping. BuildView turns it into an ArtistView.
type ArtistRow struct {
	Artist
	Rating         float64
	RatingCount    int
	SocialNetworks []string
}

// ArtistView is the normalized read model returned by get, list and search.
type ArtistView struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	StageName       string   `json:"stageName"`
	AlbumCount      int      `json:"albumCount"`
	Label           *string  `json:"label"`
	Publisher       *string  `json:"publisher"`
	CareerStartDate *string  `json:"careerStartDate"`
	Image           *string  `json:"image"`
	Rating          float64  `json:"rating"`
	RatingCount     int      `json:"ratingCount"`
	SocialNetworks  []string `json:"socialNetworks"`
}

// RatingSummary is the derived aggregate for one artist: average score and
// distinct rater count, computed at read time and never stored.
type RatingSummary struct {
	ArtistID int64   `json:"artistId"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// Pagination describes one page of a list result.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
}

// ArtistPage is one page of artist views plus its pagination metadata.
type ArtistPage struct {
	Items      []ArtistView `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// NewPagination computes page metadata; TotalPages is ceil(totalItems/limit).
func NewPagination(page, limit int, totalItems int64) Pagination {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:  page,
		ItemsPerPage: limit,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
	}
}
