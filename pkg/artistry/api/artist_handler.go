package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/soundstage/artistry/pkg/artistry"
)

// ArtistHandler handles HTTP requests for artists. It is also the upload
// gate: multipart parsing, size limits and extension checks happen here, so
// the service only ever sees an already-vetted file.
type ArtistHandler struct {
	service artistry.Service
	logger  *slog.Logger
}

// NewArtistHandler creates a new artist handler
func NewArtistHandler(service artistry.Service, logger *slog.Logger) *ArtistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtistHandler{service: service, logger: logger}
}

// Routes returns the routes for artists
func (h *ArtistHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListArtists)
	r.Get("/search", h.SearchArtists)
	r.Get("/{id}", h.GetArtist)
	r.Get("/{id}/rating", h.GetArtistRating)

	r.Post("/", h.CreateArtist)
	r.Put("/{id}", h.UpdateArtist)
	r.Delete("/{id}", h.DeleteArtist)
	r.Post("/{id}/rate", h.RateArtist)

	return r
}

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// artistPayload is the wire form of artist fields, shared by create and
// update in both JSON and multipart encodings.
type artistPayload struct {
	Name            string   `json:"name"`
	StageName       string   `json:"stageName"`
	AlbumCount      int      `json:"albumCount"`
	Label           *string  `json:"label"`
	Publisher       *string  `json:"publisher"`
	CareerStartDate *string  `json:"careerStartDate"`
	SocialNetworks  []string `json:"socialNetworks"`
}

func (p *artistPayload) careerStart() (*time.Time, error) {
	if p.CareerStartDate == nil || *p.CareerStartDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *p.CareerStartDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// decodeArtistForm reads artist fields plus the optional image from either a
// multipart form or a JSON body. The returned closer is non-nil when a file
// was opened.
func (h *ArtistHandler) decodeArtistForm(r *http.Request) (artistPayload, *artistry.FileUpload, multipart.File, error) {
	var payload artistPayload

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxUploadSize)).Decode(&payload); err != nil {
			return payload, nil, nil, &artistry.ValidationError{Reason: "invalid request body"}
		}
		return payload, nil, nil, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return payload, nil, nil, &artistry.ValidationError{Reason: "invalid multipart form"}
	}

	payload.Name = r.FormValue("name")
	payload.StageName = r.FormValue("stageName")
	payload.Label = optionalString(r.FormValue("label"))
	payload.Publisher = optionalString(r.FormValue("publisher"))
	payload.CareerStartDate = optionalString(r.FormValue("careerStartDate"))

	if v := r.FormValue("albumCount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return payload, nil, nil, &artistry.ValidationError{Reason: "albumCount must be an integer"}
		}
		payload.AlbumCount = n
	}

	// The field is either a JSON array or a single bare URL.
	if v := r.FormValue("socialNetworks"); v != "" {
		var urls []string
		if err := json.Unmarshal([]byte(v), &urls); err != nil {
			urls = []string{v}
		}
		payload.SocialNetworks = urls
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return payload, nil, nil, nil
	}
	if err != nil {
		return payload, nil, nil, &artistry.ValidationError{Reason: "invalid image upload"}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		file.Close()
		return payload, nil, nil, &artistry.ValidationError{Reason: "unsupported image type"}
	}

	return payload, &artistry.FileUpload{Filename: header.Filename, Reader: file}, file, nil
}

// CreateArtist creates a new artist
func (h *ArtistHandler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	payload, upload, file, err := h.decodeArtistForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	careerStart, err := payload.careerStart()
	if err != nil {
		h.writeError(w, r, &artistry.ValidationError{Reason: "careerStartDate must be YYYY-MM-DD"})
		return
	}

	id, err := h.service.CreateArtist(r.Context(), artistry.CreateArtistRequest{
		Name:            payload.Name,
		StageName:       payload.StageName,
		AlbumCount:      payload.AlbumCount,
		Label:           payload.Label,
		Publisher:       payload.Publisher,
		CareerStartDate: careerStart,
		SocialNetworks:  payload.SocialNetworks,
		Image:           upload,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   map[string]int64{"id": id},
	})
}

// GetArtist returns one artist view
func (h *ArtistHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.service.GetArtist(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if view == nil {
		h.writeError(w, r, artistry.ErrArtistNotFound)
		return
	}

	render.JSON(w, r, view)
}

// ListArtists returns one page of artists
func (h *ArtistHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListArtists(r.Context(), artistry.ListArtistsRequest{Page: page, Limit: limit})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"data":       result.Items,
		"pagination": result.Pagination,
	})
}

// UpdateArtist replaces an artist's mutable fields
func (h *ArtistHandler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	payload, upload, file, err := h.decodeArtistForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	careerStart, err := payload.careerStart()
	if err != nil {
		h.writeError(w, r, &artistry.ValidationError{Reason: "careerStartDate must be YYYY-MM-DD"})
		return
	}

	updated, err := h.service.UpdateArtist(r.Context(), id, artistry.UpdateArtistRequest{
		Name:            payload.Name,
		StageName:       payload.StageName,
		AlbumCount:      payload.AlbumCount,
		Label:           payload.Label,
		Publisher:       payload.Publisher,
		CareerStartDate: careerStart,
		SocialNetworks:  payload.SocialNetworks,
		Image:           upload,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !updated {
		h.writeError(w, r, artistry.ErrArtistNotFound)
		return
	}

	render.JSON(w, r, map[string]string{"status": "success"})
}

// DeleteArtist removes an artist
func (h *ArtistHandler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.service.DeleteArtist(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeError(w, r, artistry.ErrArtistNotFound)
		return
	}

	render.JSON(w, r, map[string]string{"status": "success"})
}

// SearchArtists returns artists matching a name substring
func (h *ArtistHandler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("name")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	views, err := h.service.SearchArtists(r.Context(), query, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, views)
}

// ratePayload is the request body for rating an artist
type ratePayload struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}

// RateArtist upserts one user's score for an artist
func (h *ArtistHandler) RateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var payload ratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, r, &artistry.ValidationError{Reason: "invalid request body"})
		return
	}

	summary, err := h.service.RateArtist(r.Context(), artistry.RateArtistRequest{
		ArtistID: id,
		UserID:   payload.UserID,
		Score:    payload.Score,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"updatedRating": summary})
}

// GetArtistRating returns the current aggregate for one artist
func (h *ArtistHandler) GetArtistRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.service.GetArtistRating(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, &artistry.ValidationError{Reason: "invalid artist id"}
	}
	return id, nil
}

// writeError maps the store's error taxonomy onto HTTP statuses. Internal
// detail is logged server-side; the caller only sees a generic message.
func (h *ArtistHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *artistry.ValidationError
	var cerr *artistry.ConstraintError

	switch {
	case errors.As(err, &verr):
		h.renderError(w, r, http.StatusBadRequest, verr.Error())
	case errors.Is(err, artistry.ErrArtistNotFound):
		h.renderError(w, r, http.StatusNotFound, "artist not found")
	case errors.As(err, &cerr):
		h.renderError(w, r, http.StatusConflict, cerr.Error())
	case errors.Is(err, artistry.ErrTooManyOperations):
		h.renderError(w, r, http.StatusServiceUnavailable, artistry.ErrTooManyOperations.Error())
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		h.renderError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (h *ArtistHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"status":  "error",
		"message": message,
	})
}
