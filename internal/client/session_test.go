package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal in-memory server speaking the API's JSON envelope.
// It accepts exactly one access token at a time; rotating it simulates
// expiry of everything issued earlier.
type fakeAPI struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshCalls int64
	refreshDelay time.Duration
}

func (f *fakeAPI) currentAccess() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accessToken
}

func (f *fakeAPI) currentRefresh() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshToken
}

func (f *fakeAPI) rotateAccess(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken = token
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
	ok := func(w http.ResponseWriter, data interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": data})
	}
	fail := func(w http.ResponseWriter, status int, code string) {
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": code, "message": code},
		})
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+f.currentAccess()
	}

	userData := map[string]string{
		"id":       "user-1",
		"username": "marco",
		"email":    "marco@example.com",
		"role":     "user",
	}

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]interface{}{
			"access_token":  f.currentAccess(),
			"refresh_token": f.currentRefresh(),
			"expires_in":    3600,
			"user":          userData,
		})
	})

	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != f.currentRefresh() {
			fail(w, http.StatusUnauthorized, "UNAUTHORIZED")
			return
		}
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		atomic.AddInt64(&f.refreshCalls, 1)
		ok(w, map[string]interface{}{
			"access_token": f.currentAccess(),
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			fail(w, http.StatusUnauthorized, "UNAUTHORIZED")
			return
		}
		ok(w, userData)
	})

	mux.HandleFunc("/api/itineraries", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			fail(w, http.StatusUnauthorized, "UNAUTHORIZED")
			return
		}
		ok(w, []interface{}{})
	})

	return mux
}

func newTestSession(t *testing.T, baseURL, tokenFile string) *Session {
	t.Helper()
	session, err := New(Config{
		BaseURL:   baseURL,
		TokenFile: tokenFile,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}

func TestSession_LoginAndMe(t *testing.T) {
	api := &fakeAPI{accessToken: "access-1", refreshToken: "refresh-1"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "session.json")
	session := newTestSession(t, server.URL, tokenFile)

	profile, err := session.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)
	assert.Equal(t, "marco", profile.Username)

	user, err := session.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	// Tokens are persisted with owner-only permissions
	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSession_RestoreAcrossRestart(t *testing.T) {
	api := &fakeAPI{accessToken: "access-1", refreshToken: "refresh-1"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "session.json")

	first := newTestSession(t, server.URL, tokenFile)
	_, err := first.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)
	first.Close()

	// A fresh process over the same token file picks the session back up
	second := newTestSession(t, server.URL, tokenFile)
	profile, err := second.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "marco", profile.Username)
}

func TestSession_RestoreRefreshesExpiredAccessToken(t *testing.T) {
	api := &fakeAPI{accessToken: "access-1", refreshToken: "refresh-1"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "session.json")

	session := newTestSession(t, server.URL, tokenFile)
	_, err := session.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)
	session.Close()

	// Everything issued so far stops working; only a refresh can recover
	api.rotateAccess("access-2")

	restarted := newTestSession(t, server.URL, tokenFile)
	profile, err := restarted.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(1), atomic.LoadInt64(&api.refreshCalls))
}

func TestSession_ConcurrentExpiryTriggersOneRefresh(t *testing.T) {
	api := &fakeAPI{
		accessToken:  "access-1",
		refreshToken: "refresh-1",
		refreshDelay: 50 * time.Millisecond,
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	session := newTestSession(t, server.URL, filepath.Join(t.TempDir(), "session.json"))
	_, err := session.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)

	api.rotateAccess("access-2")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = session.Itineraries(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&api.refreshCalls))
}

func TestSession_RestoreWithDeadTokensClearsStore(t *testing.T) {
	api := &fakeAPI{accessToken: "access-1", refreshToken: "refresh-1"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "session.json")

	session := newTestSession(t, server.URL, tokenFile)
	_, err := session.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)
	session.Close()

	// Both tokens die; the refresh attempt fails too
	api.rotateAccess("access-2")
	api.mu.Lock()
	api.refreshToken = "refresh-2"
	api.mu.Unlock()

	restarted := newTestSession(t, server.URL, tokenFile)
	profile, err := restarted.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)

	_, err = os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestSession_Logout(t *testing.T) {
	api := &fakeAPI{accessToken: "access-1", refreshToken: "refresh-1"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "session.json")
	session := newTestSession(t, server.URL, tokenFile)

	_, err := session.Login(context.Background(), "marco", "polo-travels-far")
	require.NoError(t, err)

	require.NoError(t, session.Logout())
	assert.Nil(t, session.Profile())

	_, err = os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err))

	_, err = session.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestStore(t *testing.T) {
	t.Run("missing file loads as nil", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)

		creds, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	t.Run("save then load roundtrip", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)

		saved := &Credentials{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			User:         Profile{ID: "user-1", Username: "marco"},
		}
		require.NoError(t, store.Save(saved))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, saved, loaded)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)

		require.NoError(t, store.Save(&Credentials{AccessToken: "a", RefreshToken: "r"}))
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())
	})
}
