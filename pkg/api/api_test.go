package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpdateInfo(t *testing.T) {
	info, err := ParseUpdateInfo(`{"latestVersion":"2.0.0","forceUpdate":true,"storeUrl":"https://store/app"}`)
	require.NoError(t, err)
	assert.Equal(t, UpdateInfo{LatestVersion: "2.0.0", ForceUpdate: true, StoreURL: "https://store/app"}, info)

	for _, body := range []string{`{`, `[]`, `{"forceUpdate":true}`, `{"latestVersion":2}`} {
		_, err := ParseUpdateInfo(body)
		assert.Error(t, err, body)
	}
}

func TestParseTutorial(t *testing.T) {
	items, err := ParseTutorial(`[{"id":1,"title":"a","description":"d","image":"i"},{"id":2}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, TutorialItem{ID: 1, Title: "a", Description: "d", ImageRef: "i"}, items[0])

	items, err = ParseTutorial(`{"data":[{"id":7,"title":"wrapped","imageRef":"x"}]}`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].ImageRef)

	items, err = ParseTutorial(`[]`)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseTutorial(`"nope"`)
	assert.Error(t, err)
}

func TestFixtures(t *testing.T) {
	info, err := FixtureUpdate()
	require.NoError(t, err)
	assert.NotEmpty(t, info.LatestVersion)

	items, err := FixtureTutorial()
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestMockBackend(t *testing.T) {
	m := &MockBackend{LoginDelay: 10 * time.Millisecond}
	ctx := context.Background()

	_, err := m.CheckUpdate(ctx)
	require.NoError(t, err)
	items, err := m.FetchTutorial(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
	assert.NoError(t, m.ExchangeToken(ctx, nil))

	assert.ErrorIs(t, m.Login(ctx, "", "secret"), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Login(ctx, "me@example.com", ""), ErrInvalidCredentials)
	assert.NoError(t, m.Login(ctx, "me@example.com", "secret"))
}

func TestMockBackendHonoursContext(t *testing.T) {
	m := NewMockBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.FetchTutorial(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPBackend(t *testing.T) {
	var exchanged atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get(AppTokenHeader))
		w.Write([]byte(`{"latestVersion":"1.2.0","storeUrl":"https://store"}`))
	})
	mux.HandleFunc("/tutorial", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"hello"}]`))
	})
	mux.HandleFunc("/auth/exchange", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		exchanged.Store(body)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, "tok", 0)
	ctx := context.Background()

	info, err := b.CheckUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", info.LatestVersion)

	items, err := b.FetchTutorial(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", items[0].Title)

	require.NoError(t, b.ExchangeToken(ctx, LoginInfo{"email": "me@example.com"}))
	body := exchanged.Load().(map[string]interface{})
	assert.Equal(t, "tok", body["appToken"])
	assert.Equal(t, map[string]interface{}{"email": "me@example.com"}, body["loginInfo"])

	assert.NoError(t, b.Login(ctx, "me@example.com", "right"))
	assert.ErrorIs(t, b.Login(ctx, "me@example.com", "wrong"), ErrInvalidCredentials)
}

func TestHTTPBackendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"latestVersion":"1.0.0"}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, "tok", 3)
	info, err := b.CheckUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.LatestVersion)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPBackendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPBackend(srv.URL, "tok", 0).FetchTutorial(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}
