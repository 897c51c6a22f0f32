package store_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"ewintr.nl/vidqa/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func videoStore(t *testing.T, handler http.Handler) *store.VideoStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return store.NewVideoStore(client.New(srv.URL, testLogger()), testLogger())
}

func TestVideoStoreList(t *testing.T) {
	fail := false
	s := videoStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, `{"message":"backend down"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]model.Video{
			{ID: "v1", Title: "one", Status: model.StatusCompleted},
			{ID: "v2", Title: "two", Status: model.StatusProcessing},
		})
	}))

	require.NoError(t, s.List(context.Background()))
	require.Len(t, s.Videos(), 2)
	assert.Equal(t, "v1", s.Videos()[0].ID)
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())

	// a failed refresh keeps the stale list visible
	fail = true
	err := s.List(context.Background())
	require.Error(t, err)
	assert.Len(t, s.Videos(), 2)
	assert.Equal(t, "backend down", s.Err())
	assert.False(t, s.Loading())
}

func TestVideoStoreSubmitURL(t *testing.T) {
	s := videoStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(model.Video{ID: "new-" + req.Title, Title: req.Title, Status: model.StatusPending})
	}))

	_, err := s.SubmitURL(context.Background(), "https://example.com/1", "first")
	require.NoError(t, err)
	_, err = s.SubmitURL(context.Background(), "https://example.com/2", "second")
	require.NoError(t, err)

	videos := s.Videos()
	require.Len(t, videos, 2)
	assert.Equal(t, "second", videos[0].Title, "newest video comes first")
	assert.True(t, s.IsWorking("new-first"))
	assert.True(t, s.IsWorking("new-second"))
	assert.False(t, s.Loading())
}

func TestVideoStoreSubmitURLFailure(t *testing.T) {
	s := videoStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid url"}`, http.StatusBadRequest)
	}))

	_, err := s.SubmitURL(context.Background(), "not-a-url", "")
	require.Error(t, err)
	assert.Equal(t, "invalid url", err.Error(), "error is returned for field-level display")
	assert.Equal(t, "invalid url", s.Err())
	assert.Empty(t, s.Videos())
}

func TestVideoStoreSubmitFile(t *testing.T) {
	s := videoStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		json.NewEncoder(w).Encode(model.Video{ID: "up1", Title: r.FormValue("title"), Status: model.StatusPending})
	}))

	video, err := s.SubmitFile(context.Background(), "talk.mp4", strings.NewReader("bytes"), "")
	require.NoError(t, err)
	assert.Equal(t, "talk.mp4", video.Title, "title defaults to the file name")
	require.Len(t, s.Videos(), 1)
	assert.True(t, s.IsWorking("up1"))
}

func TestVideoStorePollStatus(t *testing.T) {
	status := model.StatusUpdate{ID: "v1", Status: model.StatusProcessing, Progress: 40}
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Video{{ID: "v1", Title: "one", Status: model.StatusPending}})
	})
	mux.HandleFunc("/videos/v1/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/videos/process-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Video{ID: "v1", Title: "one", Status: model.StatusPending})
	})
	s := videoStore(t, mux)

	_, err := s.SubmitURL(context.Background(), "https://example.com/1", "one")
	require.NoError(t, err)
	require.True(t, s.IsWorking("v1"))

	// still processing, stays in the working set
	got, err := s.PollStatus(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, got.Status)
	assert.True(t, s.IsWorking("v1"))

	// completed, leaves the working set and the fields merge in
	status = model.StatusUpdate{ID: "v1", Status: model.StatusCompleted, Progress: 100}
	_, err = s.PollStatus(context.Background(), "v1")
	require.NoError(t, err)
	assert.False(t, s.IsWorking("v1"))
	assert.Equal(t, model.StatusCompleted, s.Videos()[0].Status)
	assert.Equal(t, 100, s.Videos()[0].Progress)
}

func TestVideoStorePollStatusFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/process-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Video{ID: "v1", Title: "one", Status: model.StatusPending})
	})
	mux.HandleFunc("/videos/v1/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.StatusUpdate{ID: "v1", Status: model.StatusFailed, Message: "no audio track"})
	})
	s := videoStore(t, mux)

	_, err := s.SubmitURL(context.Background(), "https://example.com/1", "one")
	require.NoError(t, err)

	_, err = s.PollStatus(context.Background(), "v1")
	require.NoError(t, err)
	assert.False(t, s.IsWorking("v1"), "failed is terminal, polling it again is pointless")
	assert.Equal(t, model.StatusFailed, s.Videos()[0].Status)
	assert.Equal(t, "no audio track", s.Videos()[0].ErrorMessage)
}

func TestVideoStorePollStatusClampsProgress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/process-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Video{ID: "v1", Title: "one", Status: model.StatusPending})
	})
	mux.HandleFunc("/videos/v1/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.StatusUpdate{ID: "v1", Status: model.StatusCompleted, Progress: 150})
	})
	s := videoStore(t, mux)

	_, err := s.SubmitURL(context.Background(), "https://example.com/1", "one")
	require.NoError(t, err)
	_, err = s.PollStatus(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 100, s.Videos()[0].Progress)
}

func TestVideoStoreDelete(t *testing.T) {
	fail := false
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Video{{ID: "v1", Status: model.StatusCompleted}, {ID: "v2", Status: model.StatusCompleted}})
	})
	mux.HandleFunc("/videos/", func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, `{"message":"cannot delete"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	s := videoStore(t, mux)
	require.NoError(t, s.List(context.Background()))

	// no optimistic removal on failure
	fail = true
	require.Error(t, s.Delete(context.Background(), "v1"))
	assert.Len(t, s.Videos(), 2)
	assert.Equal(t, "cannot delete", s.Err())

	fail = false
	require.NoError(t, s.Delete(context.Background(), "v1"))
	videos := s.Videos()
	require.Len(t, videos, 1)
	assert.Equal(t, "v2", videos[0].ID)
}

func TestVideoStoreSelect(t *testing.T) {
	s := videoStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Video{{ID: "v1", Title: "one", Status: model.StatusCompleted}})
	}))
	require.NoError(t, s.List(context.Background()))
	before := s.Videos()

	video := before[0]
	s.Select(&video)
	require.NotNil(t, s.Current())
	assert.Equal(t, "v1", s.Current().ID)
	assert.Equal(t, before, s.Videos(), "selecting must not touch the collection")

	s.Select(nil)
	assert.Nil(t, s.Current())
}

func TestVideoStoreToggleLike(t *testing.T) {
	liked := true
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Video{{ID: "v1", Status: model.StatusCompleted}})
	})
	mux.HandleFunc("/videos/v1/like", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"is_liked": liked})
		liked = !liked
	})
	s := videoStore(t, mux)
	require.NoError(t, s.List(context.Background()))

	require.NoError(t, s.ToggleLike(context.Background(), "v1"))
	assert.True(t, s.Videos()[0].IsLiked)
	require.NoError(t, s.ToggleLike(context.Background(), "v1"))
	assert.False(t, s.Videos()[0].IsLiked)
}
