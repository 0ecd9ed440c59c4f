package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func TestDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "place-abc", q.Get("place_id"))
		assert.Equal(t, "reviews,photos", q.Get("fields"))
		assert.Equal(t, "nl", q.Get("language"))
		assert.Equal(t, "most_relevant", q.Get("reviews_sort"))
		assert.Equal(t, "test-key", q.Get("key"))

		json.NewEncoder(w).Encode(DetailsResponse{
			Status: "OK",
			Result: Result{
				Reviews: []Review{{AuthorName: "Piet", Rating: 5, Text: "Top service"}},
				Photos:  []Photo{{PhotoReference: "ref-1"}},
			},
		})
	})

	resp, err := c.Details(context.Background(), "place-abc")
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
	require.Len(t, resp.Result.Reviews, 1)
	assert.Equal(t, "Piet", resp.Result.Reviews[0].AuthorName)
}

func TestDetailsHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied"))
	})

	_, err := c.Details(context.Background(), "place-abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPhotoURL(t *testing.T) {
	c := NewClient("test-key")
	got := c.PhotoURL("ref-1", 1200)
	assert.Contains(t, got, "/photo?")
	assert.Contains(t, got, "maxwidth=1200")
	assert.Contains(t, got, "photo_reference=ref-1")
	assert.Contains(t, got, "key=test-key")
}
