package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/soundstage/artistry/pkg/artistry"
)

// Repository implements artistry.Repository using in-memory storage. The
// mutex gives every method the same all-or-nothing behavior the Postgres
// repository gets from its transactions.
type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	artists map[int64]*artistry.Artist
	links   map[int64][]string
	ratings map[int64]map[string]float64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		artists: make(map[int64]*artistry.Artist),
		links:   make(map[int64][]string),
		ratings: make(map[int64]map[string]float64),
	}
}

func (r *Repository) CreateArtist(ctx context.Context, artist *artistry.Artist, links []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID

	// Copy to avoid external modification
	artistCopy := *artist
	artistCopy.ID = id
	r.artists[id] = &artistCopy
	r.links[id] = append([]string(nil), links...)

	return id, nil
}

func (r *Repository) GetArtistRow(ctx context.Context, id int64) (*artistry.ArtistRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rowLocked(id)
}

// rowLocked assembles the joined row for one artist. Callers hold the lock.
func (r *Repository) rowLocked(id int64) (*artistry.ArtistRow, error) {
	artist, exists := r.artists[id]
	if !exists {
		return nil, artistry.ErrArtistNotFound
	}

	row := &artistry.ArtistRow{
		Artist:         *artist,
		SocialNetworks: append([]string(nil), r.links[id]...),
	}
	if scores := r.ratings[id]; len(scores) > 0 {
		var sum float64
		for _, score := range scores {
			sum += score
		}
		row.Rating = sum / float64(len(scores))
		row.RatingCount = len(scores)
	}
	return row, nil
}

func (r *Repository) ListArtistRows(ctx context.Context, limit, offset int) ([]artistry.ArtistRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.artists))
	for id := range r.artists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	rows := make([]artistry.ArtistRow, 0, limit)
	for i := offset; i < len(ids) && len(rows) < limit; i++ {
		row, err := r.rowLocked(ids[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

func (r *Repository) CountArtists(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.artists)), nil
}

func (r *Repository) UpdateArtist(ctx context.Context, id int64, artist *artistry.Artist, newImage *string, links []string) (*string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.artists[id]
	if !exists {
		return nil, false, nil
	}

	prevImage := current.Image

	current.Name = artist.Name
	current.StageName = artist.StageName
	current.AlbumCount = artist.AlbumCount
	current.Label = artist.Label
	current.Publisher = artist.Publisher
	current.CareerStartDate = artist.CareerStartDate
	if newImage != nil {
		current.Image = newImage
	}

	if links != nil {
		// Wholesale replace, never a merge
		r.links[id] = append([]string(nil), links...)
	}

	return prevImage, true, nil
}

func (r *Repository) DeleteArtist(ctx context.Context, id int64) (*string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	artist, exists := r.artists[id]
	if !exists {
		return nil, false, nil
	}

	image := artist.Image
	delete(r.ratings, id)
	delete(r.links, id)
	delete(r.artists, id)

	return image, true, nil
}

func (r *Repository) UpsertRating(ctx context.Context, artistID int64, userID string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.artists[artistID]; !exists {
		return artistry.ErrArtistNotFound
	}

	scores, exists := r.ratings[artistID]
	if !exists {
		scores = make(map[string]float64)
		r.ratings[artistID] = scores
	}
	scores[userID] = score

	return nil
}

func (r *Repository) GetRatingSummary(ctx context.Context, artistID int64) (*artistry.RatingSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.artists[artistID]; !exists {
		return nil, artistry.ErrArtistNotFound
	}

	summary := &artistry.RatingSummary{ArtistID: artistID}
	if scores := r.ratings[artistID]; len(scores) > 0 {
		var sum float64
		for _, score := range scores {
			sum += score
		}
		summary.Average = sum / float64(len(scores))
		summary.Count = len(scores)
	}
	return summary, nil
}

func (r *Repository) SearchArtistRows(ctx context.Context, query string, limit int) ([]artistry.ArtistRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)

	ids := make([]int64, 0, len(r.artists))
	for id, artist := range r.artists {
		if strings.Contains(strings.ToLower(artist.Name), needle) ||
			strings.Contains(strings.ToLower(artist.StageName), needle) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]artistry.ArtistRow, 0, limit)
	for _, id := range ids {
		if len(rows) == limit {
			break
		}
		row, err := r.rowLocked(id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

var _ artistry.Repository = (*Repository)(nil)
