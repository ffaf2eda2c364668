package yelp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/lookup"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL + "/v3/"})
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	require.Error(t, err)

	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.Equal(t, defaultLimit, c.limit)
}

func TestSearchDecodesBusinesses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/businesses/search", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "deep dish", r.URL.Query().Get("term"))
		require.Equal(t, "Hanover, NH", r.URL.Query().Get("location"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"total":1,"businesses":[{
			"name":"Mike's Pizza","url":"https://yelp.test/mikes","rating":4.5,
			"image_url":"https://img.test/m.jpg",
			"categories":[{"title":"Pizza"},{"title":"Italian"}],
			"location":{"display_address":["1 Main St","Hanover, NH 03755"]}}]}`))
	})

	res, err := c.Search(context.Background(), "deep dish", "Hanover, NH")
	require.NoError(t, err)
	require.Equal(t, []lookup.Business{{
		Name:     "Mike's Pizza",
		URL:      "https://yelp.test/mikes",
		Rating:   4.5,
		ImageURL: "https://img.test/m.jpg",
		Snippet:  "Pizza, Italian · 1 Main St, Hanover, NH 03755",
	}}, res.Businesses)
}

func TestSearchEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"businesses":[]}`))
	})
	res, err := c.Search(context.Background(), "pizza", "Boston")
	require.NoError(t, err)
	require.Empty(t, res.Businesses)
}

func TestSearchLocationNotFound(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"LOCATION_NOT_FOUND","description":"Could not execute search"}}`))
	})
	_, err := c.Search(context.Background(), "pizza", "Atlantis")
	require.ErrorIs(t, err, lookup.ErrNotFound)

	var ce *lookup.CollaboratorError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "yelp", ce.Service)
	require.Equal(t, 1, calls)
}

func TestSearchServerError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Search(context.Background(), "pizza", "Boston")
	require.Error(t, err)
	require.NotErrorIs(t, err, lookup.ErrNotFound)

	var se *HTTPStatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusInternalServerError, se.StatusCode)
	require.Equal(t, 1, calls)
}
