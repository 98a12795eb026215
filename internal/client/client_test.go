package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/faultline/internal/apperr"
	"github.com/dotcommander/faultline/pkg/cache"
)

type contract struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recordingReporter struct {
	calls atomic.Int64
}

func (r *recordingReporter) LogError(error, map[string]any) { r.calls.Add(1) }

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c-1","name":"alpha"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := GetJSON[contract](context.Background(), c, "/contracts/c-1")
	require.NoError(t, err)
	assert.Equal(t, contract{ID: "c-1", Name: "alpha"}, got)
}

func TestGetJSON_APIFailureNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := GetJSON[contract](context.Background(), c, "/contracts/missing")
	require.Error(t, err)

	var norm *apperr.Error
	require.ErrorAs(t, err, &norm)
	assert.Equal(t, apperr.KindAPI, norm.Kind)
	assert.Equal(t, 404, norm.StatusCode)
	assert.Equal(t, "not found", norm.Message)
	assert.Equal(t, "/contracts/missing", norm.Endpoint)
}

func TestGetJSON_ServerMessageWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"contract already archived"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := GetJSON[contract](context.Background(), c, "/contracts/c-1")

	var norm *apperr.Error
	require.ErrorAs(t, err, &norm)
	assert.Equal(t, "contract already archived", norm.Message)
}

func TestGetJSON_TransportFailure(t *testing.T) {
	// Point at a closed server to force a connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := GetJSON[contract](context.Background(), c, "/contracts")

	var norm *apperr.Error
	require.ErrorAs(t, err, &norm)
	assert.Equal(t, apperr.KindNetwork, norm.Kind)
	assert.Equal(t, apperr.MsgConnectivity, norm.Message)
	assert.NotNil(t, norm.Details, "original failure kept for diagnostics")
}

func TestGetJSON_ParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": broken`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := GetJSON[contract](context.Background(), c, "/contracts")

	var norm *apperr.Error
	require.ErrorAs(t, err, &norm)
	assert.Equal(t, apperr.KindUnknown, norm.Kind)
	assert.Equal(t, apperr.MsgParseFailure, norm.Message)
}

func TestCall_DoDoesNotRetry(t *testing.T) {
	var invocations atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invocations.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	call := NewGet[contract](New(srv.URL), "/contracts")
	_, err := call.Do(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, invocations.Load(), "wrapper must not retry on its own")

	// Caller-initiated retry: re-invoking the same Call value works.
	_, err = call.Do(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, invocations.Load())
}

func TestCall_ReportsNormalizedFailures(t *testing.T) {
	rep := &recordingReporter{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, WithReporter(rep))
	_, err := GetJSON[contract](context.Background(), c, "/contracts")
	require.Error(t, err)
	assert.EqualValues(t, 1, rep.calls.Load())

	// Success does not report.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","name":"y"}`))
	}))
	defer srv2.Close()
	c2 := New(srv2.URL, WithReporter(rep))
	_, err = GetJSON[contract](context.Background(), c2, "/contracts")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.calls.Load())
}

func TestGetJSON_CacheServesRepeatedGets(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"id":"c-1","name":"alpha"}`))
	}))
	defer srv.Close()

	cc := cache.New(16, time.Minute)
	c := New(srv.URL, WithCache(cc))

	for i := 0; i < 3; i++ {
		got, err := GetJSON[contract](context.Background(), c, "/contracts/c-1")
		require.NoError(t, err)
		assert.Equal(t, "alpha", got.Name)
	}
	assert.EqualValues(t, 1, hits.Load(), "repeat GETs should come from the cache")
	assert.EqualValues(t, 2, cc.Metrics().Hits())

	c.Invalidate("/contracts/c-1")
	_, err := GetJSON[contract](context.Background(), c, "/contracts/c-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestRetryWithBackoff_RecoversFromTransientFailures(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"c-1","name":"alpha"}`))
	}))
	defer srv.Close()

	call := NewGet[contract](New(srv.URL), "/contracts/c-1")
	got, err := RetryCall(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestRetryWithBackoff_StopsOnPermanentFailure(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid data","fields":{"name":"required"}}`))
	}))
	defer srv.Close()

	call := NewGet[contract](New(srv.URL), "/contracts")
	_, err := RetryCall(context.Background(), call)
	require.Error(t, err)
	assert.EqualValues(t, 1, attempts.Load(), "validation failures must not be retried")

	var norm *apperr.Error
	require.ErrorAs(t, err, &norm)
	assert.Equal(t, apperr.KindValidation, norm.Kind)
	assert.Equal(t, "required", norm.Fields["name"])
}

func TestRetryWithBackoff_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return apperr.ClassifyTransport(errors.New("down"))
	})
	require.Error(t, err)
}
