package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundstage/artistry/pkg/artistry"
	memoryrepo "github.com/soundstage/artistry/pkg/artistry/repo/memory"
	memorystorage "github.com/soundstage/artistry/pkg/artistry/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, artistry.Service) {
	t.Helper()

	svc, err := artistry.New(
		artistry.WithRepository(memoryrepo.New()),
		artistry.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)

	server := httptest.NewServer(NewArtistHandler(svc, nil).Routes())
	t.Cleanup(server.Close)

	return server, svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func createArtist(t *testing.T, serverURL, name, stageName string) int64 {
	t.Helper()

	resp := postJSON(t, serverURL+"/", map[string]any{
		"name":      name,
		"stageName": stageName,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	return int64(data["id"].(float64))
}

func TestCreateArtistJSON(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/", map[string]any{
		"name":            "Jean Dupont",
		"stageName":       "JD",
		"albumCount":      2,
		"careerStartDate": "2001-06-15",
		"socialNetworks":  []string{"https://example.com/jd"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])
}

func TestCreateArtistValidationError(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/", map[string]any{"stageName": "JD"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "name")
}

func TestCreateArtistBadDate(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/", map[string]any{
		"name":            "Jean",
		"stageName":       "JD",
		"careerStartDate": "15/06/2001",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, fileContent string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestCreateArtistMultipart(t *testing.T) {
	server, svc := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":           "Jean Dupont",
		"stageName":      "JD",
		"albumCount":     "3",
		"socialNetworks": `["https://a.example","https://b.example"]`,
	}, "image", "photo.png", "png bytes")

	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	view, err := svc.GetArtist(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 3, view.AlbumCount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, view.SocialNetworks)
	require.NotNil(t, view.Image)
	assert.True(t, strings.HasSuffix(*view.Image, ".png"))
}

func TestCreateArtistMultipartSingleURL(t *testing.T) {
	server, svc := newTestServer(t)

	// A bare URL instead of a JSON array is accepted as a one-element list.
	body, contentType := multipartBody(t, map[string]string{
		"name":           "Jean Dupont",
		"stageName":      "JD",
		"socialNetworks": "https://a.example",
	}, "", "", "")

	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	view, err := svc.GetArtist(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, []string{"https://a.example"}, view.SocialNetworks)
}

func TestCreateArtistRejectsUnsupportedImageType(t *testing.T) {
	server, _ := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":      "Jean",
		"stageName": "JD",
	}, "image", "malware.exe", "bytes")

	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetArtist(t *testing.T) {
	server, _ := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	resp, err := http.Get(fmt.Sprintf("%s/%d", server.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Jean Dupont", body["name"])
	assert.Equal(t, "JD", body["stageName"])
	assert.Equal(t, float64(0), body["rating"])
}

func TestGetArtistNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetArtistInvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/not-a-number")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListArtists(t *testing.T) {
	server, _ := newTestServer(t)
	createArtist(t, server.URL, "Alpha", "a")
	createArtist(t, server.URL, "Beta", "b")
	createArtist(t, server.URL, "Gamma", "c")

	resp, err := http.Get(server.URL + "/?page=1&limit=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Gamma", data[0].(map[string]any)["name"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["totalItems"])
	assert.Equal(t, float64(2), pagination["totalPages"])
}

func TestUpdateArtist(t *testing.T) {
	server, svc := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	data, err := json.Marshal(map[string]any{
		"name":      "Jean Dupont",
		"stageName": "JD2",
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/%d", server.URL, id), bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	view, err := svc.GetArtist(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "JD2", view.StageName)
}

func TestUpdateArtistNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	data := strings.NewReader(`{"name":"x","stageName":"y"}`)
	req, err := http.NewRequest(http.MethodPut, server.URL+"/42", data)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteArtist(t *testing.T) {
	server, _ := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/%d", server.URL, id), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Second delete finds nothing.
	resp, err = http.DefaultClient.Do(req.Clone(req.Context()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRateArtist(t *testing.T) {
	server, _ := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	resp := postJSON(t, fmt.Sprintf("%s/%d/rate", server.URL, id), map[string]any{
		"userId": "u1",
		"score":  4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	rating := body["updatedRating"].(map[string]any)
	assert.Equal(t, float64(4), rating["average"])
	assert.Equal(t, float64(1), rating["count"])
}

func TestRateArtistOutOfRange(t *testing.T) {
	server, _ := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	resp := postJSON(t, fmt.Sprintf("%s/%d/rate", server.URL, id), map[string]any{
		"userId": "u1",
		"score":  6,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRateArtistNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/42/rate", map[string]any{
		"userId": "u1",
		"score":  4,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetArtistRating(t *testing.T) {
	server, _ := newTestServer(t)
	id := createArtist(t, server.URL, "Jean Dupont", "JD")

	resp := postJSON(t, fmt.Sprintf("%s/%d/rate", server.URL, id), map[string]any{
		"userId": "u1",
		"score":  3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(fmt.Sprintf("%s/%d/rating", server.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["average"])
	assert.Equal(t, float64(1), body["count"])
}

func TestSearchArtists(t *testing.T) {
	server, _ := newTestServer(t)
	createArtist(t, server.URL, "Jean Dupont", "JD")
	createArtist(t, server.URL, "Marie Martin", "The Voice")

	resp, err := http.Get(server.URL + "/search?name=jean")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var views []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "Jean Dupont", views[0]["name"])
}
