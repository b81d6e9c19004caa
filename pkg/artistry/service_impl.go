package artistry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// service implements the Service interface.
//
// Blob operations are not serialized: two concurrent updates against the same
// artist can each stage a file and race on which one the committed row ends
// up referencing. The database outcome is authoritative; the loser's blob is
// discarded best-effort.
type service struct {
	repository Repository
	blobStore  BlobStore
	events     EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob store used for profile images
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithLogger sets the structured logger used for compensation failures.
// A nil logger leaves the default in place.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new service instance with the given options. A repository is
// required; a blob store is only needed for image-bearing operations.
func New(options ...Option) (Service, error) {
	s := &service{
		events: NewNoopEventSink(),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

const defaultLimit = 10

// validateArtistFields checks the required fields shared by create and
// update. It runs before any transaction opens or any blob is staged.
func validateArtistFields(name, stageName string, albumCount int) error {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if stageName == "" {
		missing = append(missing, "stageName")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if albumCount < 0 {
		return &ValidationError{Reason: "albumCount must not be negative"}
	}
	return nil
}

// stageImage persists an incoming file through the blob store and returns the
// generated key, or nil when no file was supplied.
func (s *service) stageImage(ctx context.Context, file *FileUpload) (*string, error) {
	if file == nil {
		return nil, nil
	}
	if s.blobStore == nil {
		return nil, ErrNoBlobStore
	}
	key, err := s.blobStore.Store(ctx, file.Reader, file.Filename)
	if err != nil {
		return nil, &ArtistError{Op: "stage image", Err: err}
	}
	return &key, nil
}

// discardBlob deletes a blob best-effort. Failures are logged and swallowed:
// by the time a compensation runs, the database outcome is already final.
func (s *service) discardBlob(ctx context.Context, key *string, reason string) {
	if key == nil || s.blobStore == nil {
		return
	}
	if err := s.blobStore.Delete(ctx, *key); err != nil {
		s.logger.Warn("blob cleanup failed",
			"key", *key,
			"reason", reason,
			"error", err)
	}
}

func (s *service) fireEvent(ctx context.Context, name string, fire func() error) {
	if s.events == nil {
		return
	}
	if err := fire(); err != nil {
		s.logger.Warn("event sink failed", "event", name, "error", err)
	}
}

func (s *service) CreateArtist(ctx context.Context, req CreateArtistRequest) (int64, error) {
	if err := validateArtistFields(req.Name, req.StageName, req.AlbumCount); err != nil {
		return 0, err
	}

	image, err := s.stageImage(ctx, req.Image)
	if err != nil {
		return 0, err
	}

	artist := &Artist{
		Name:            req.Name,
		StageName:       req.StageName,
		AlbumCount:      req.AlbumCount,
		Label:           req.Label,
		Publisher:       req.Publisher,
		CareerStartDate: req.CareerStartDate,
		Image:           image,
	}

	id, err := s.repository.CreateArtist(ctx, artist, req.SocialNetworks)
	if err != nil {
		s.discardBlob(ctx, image, "create rolled back")
		return 0, &ArtistError{Op: "create", Err: err}
	}

	s.fireEvent(ctx, "artist.created", func() error { return s.events.ArtistCreated(ctx, id) })
	return id, nil
}

func (s *service) GetArtist(ctx context.Context, id int64) (*ArtistView, error) {
	row, err := s.repository.GetArtistRow(ctx, id)
	if errors.Is(err, ErrArtistNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &ArtistError{ArtistID: id, Op: "get", Err: err}
	}
	view := BuildView(*row)
	return &view, nil
}

func (s *service) ListArtists(ctx context.Context, req ListArtistsRequest) (*ArtistPage, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}

	total, err := s.repository.CountArtists(ctx)
	if err != nil {
		return nil, &ArtistError{Op: "list", Err: err}
	}
	rows, err := s.repository.ListArtistRows(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, &ArtistError{Op: "list", Err: err}
	}

	return &ArtistPage{
		Items:      BuildViews(rows),
		Pagination: NewPagination(page, limit, total),
	}, nil
}

func (s *service) UpdateArtist(ctx context.Context, id int64, req UpdateArtistRequest) (bool, error) {
	if err := validateArtistFields(req.Name, req.StageName, req.AlbumCount); err != nil {
		return false, err
	}

	newImage, err := s.stageImage(ctx, req.Image)
	if err != nil {
		return false, err
	}

	artist := &Artist{
		Name:            req.Name,
		StageName:       req.StageName,
		AlbumCount:      req.AlbumCount,
		Label:           req.Label,
		Publisher:       req.Publisher,
		CareerStartDate: req.CareerStartDate,
	}

	prevImage, updated, err := s.repository.UpdateArtist(ctx, id, artist, newImage, req.SocialNetworks)
	if err != nil {
		s.discardBlob(ctx, newImage, "update rolled back")
		return false, &ArtistError{ArtistID: id, Op: "update", Err: err}
	}
	if !updated {
		s.discardBlob(ctx, newImage, "artist not found")
		return false, nil
	}

	// The replaced image is removed only after the new state is committed.
	if newImage != nil && prevImage != nil && *prevImage != *newImage {
		s.discardBlob(ctx, prevImage, "image replaced")
	}

	s.fireEvent(ctx, "artist.updated", func() error { return s.events.ArtistUpdated(ctx, id) })
	return true, nil
}

func (s *service) DeleteArtist(ctx context.Context, id int64) (bool, error) {
	image, deleted, err := s.repository.DeleteArtist(ctx, id)
	if err != nil {
		return false, &ArtistError{ArtistID: id, Op: "delete", Err: err}
	}
	if !deleted {
		return false, nil
	}

	// Outside the transaction: the rows are already gone, so a cleanup
	// failure here can only leave an orphan blob, never a dangling row.
	s.discardBlob(ctx, image, "artist deleted")

	s.fireEvent(ctx, "artist.deleted", func() error { return s.events.ArtistDeleted(ctx, id) })
	return true, nil
}

func (s *service) SearchArtists(ctx context.Context, query string, limit int) ([]ArtistView, error) {
	if limit < 1 {
		limit = defaultLimit
	}
	rows, err := s.repository.SearchArtistRows(ctx, query, limit)
	if err != nil {
		return nil, &ArtistError{Op: "search", Err: err}
	}
	return BuildViews(rows), nil
}

func (s *service) RateArtist(ctx context.Context, req RateArtistRequest) (*RatingSummary, error) {
	if req.Score < 0 || req.Score > 5 {
		return nil, &ValidationError{Reason: "score must be between 0 and 5"}
	}
	if req.UserID == "" {
		return nil, &ValidationError{Fields: []string{"userId"}}
	}

	if err := s.repository.UpsertRating(ctx, req.ArtistID, req.UserID, req.Score); err != nil {
		if errors.Is(err, ErrArtistNotFound) {
			return nil, err
		}
		return nil, &ArtistError{ArtistID: req.ArtistID, Op: "rate", Err: err}
	}

	summary, err := s.repository.GetRatingSummary(ctx, req.ArtistID)
	if err != nil {
		return nil, &ArtistError{ArtistID: req.ArtistID, Op: "rate", Err: err}
	}

	s.fireEvent(ctx, "artist.rated", func() error {
		return s.events.ArtistRated(ctx, req.ArtistID, req.UserID, req.Score)
	})
	return summary, nil
}

func (s *service) GetArtistRating(ctx context.Context, artistID int64) (*RatingSummary, error) {
	summary, err := s.repository.GetRatingSummary(ctx, artistID)
	if errors.Is(err, ErrArtistNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &ArtistError{ArtistID: artistID, Op: "get rating", Err: err}
	}
	return summary, nil
}
