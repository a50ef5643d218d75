package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(Options{
		Secret:      "test-secret",
		SessionTTL:  time.Hour,
		RememberTTL: 24 * time.Hour,
	})
}

// roundTrip переносит cookie из ответа в новый запрос
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestManager_LoginAndUserID(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()

	require.NoError(t, m.Login(rec, 42, false))

	c := findCookie(rec, SessionCookie)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Zero(t, c.MaxAge)

	id, ok := m.UserID(roundTrip(rec))
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestManager_RememberSetsMaxAge(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()

	require.NoError(t, m.Login(rec, 1, true))

	c := findCookie(rec, SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
}

func TestManager_ExpiredSession(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, 1, false))

	m.now = time.Now
	_, ok := m.UserID(roundTrip(rec))
	assert.False(t, ok)
}

func TestManager_ForeignSecretRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, NewManager(Options{Secret: "other", SessionTTL: time.Hour}).Login(rec, 1, false))

	_, ok := newTestManager().UserID(roundTrip(rec))
	assert.False(t, ok)
}

func TestManager_Logout(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()
	m.Logout(rec)

	c := findCookie(rec, SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, "", c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestManager_Flashes(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()

	want := []Flash{
		{Category: FlashSuccess, Message: "Your post has been deleted!"},
		{Category: FlashInfo, Message: "Please log in to access this page."},
	}
	require.NoError(t, m.SetFlashes(rec, want))

	r := roundTrip(rec)
	assert.True(t, HasFlashCookie(r))
	assert.Equal(t, want, m.Flashes(r))
}

func TestManager_FlashCookieIsNotSession(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlashes(rec, []Flash{{Category: FlashInfo, Message: "x"}}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: findCookie(rec, FlashCookie).Value})

	_, ok := m.UserID(r)
	assert.False(t, ok)
}

func TestManager_TamperedFlashesIgnored(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: FlashCookie, Value: "garbage"})

	assert.Empty(t, newTestManager().Flashes(r))
}
