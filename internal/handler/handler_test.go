package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/BlogApp/internal/adapter/storage/local"
	"github.com/GoArmGo/BlogApp/internal/auth"
	"github.com/GoArmGo/BlogApp/internal/database/dbtest"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/session"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []domain.MailMessage
}

func (m *captureMailer) Send(_ context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := regexp.MustCompile(`/reset_password/(\S+)`).FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.Len(t, match, 2)
	return match[1]
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

type testApp struct {
	srv      *httptest.Server
	accounts usecase.AccountUseCase
	posts    usecase.PostUseCase
	mailer   *captureMailer
	pinger   *fakePinger
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.Discard()
	db := dbtest.Open(t)

	staticDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "profile_pics"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "profile_pics", domain.DefaultImageFile), []byte("default-jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "main.css"), []byte("body{}"), 0o644))

	pictures, err := local.NewStorage(t.TempDir(), log)
	require.NoError(t, err)

	app := &testApp{mailer: &captureMailer{}, pinger: &fakePinger{}}
	users := storage.NewUserStorage(db, log)
	app.accounts = usecase.NewAccountUseCase(users, pictures, app.mailer,
		auth.NewResetTokens("test-secret", 30*time.Minute), "http://blog.test", log)
	app.posts = usecase.NewPostUseCase(storage.NewPostStorage(db, log), users, 2, log)

	sessions := session.NewManager(session.Options{
		Secret:      "test-secret",
		SessionTTL:  time.Hour,
		RememberTTL: 24 * time.Hour,
	})

	h, err := NewHandler(app.accounts, app.posts, sessions, pictures, app.pinger,
		make(chan struct{}, 2), Options{StaticDir: staticDir, MaxUploadBytes: 1 << 20}, log)
	require.NoError(t, err)

	app.srv = httptest.NewServer(NewRouter(h, 10*time.Second, log))
	t.Cleanup(app.srv.Close)
	return app
}

// browser возвращает клиент с cookie jar, который не следует редиректам сам
func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func read(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) page {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	require.NoError(t, err)
	return read(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, values url.Values) page {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, values)
	require.NoError(t, err)
	return read(t, resp)
}

func (a *testApp) register(t *testing.T, c *http.Client, username, email, password string) page {
	t.Helper()
	return a.post(t, c, "/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
}

func (a *testApp) login(t *testing.T, c *http.Client, email, password string) page {
	t.Helper()
	return a.post(t, c, "/login", url.Values{"email": {email}, "password": {password}})
}

// signup регистрирует и сразу входит
func (a *testApp) signup(t *testing.T, username string) *http.Client {
	t.Helper()
	c := a.browser(t)
	require.Equal(t, http.StatusFound, a.register(t, c, username, username+"@x.com", "pw-"+username).status)
	require.Equal(t, http.StatusFound, a.login(t, c, username+"@x.com", "pw-"+username).status)
	return c
}

func (a *testApp) latestPostID(t *testing.T) uint {
	t.Helper()
	p, err := a.posts.ListPosts(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, p.Items)
	return p.Items[0].ID
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	res := app.register(t, c, "alice", "a@x.com", "Secret1!")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)

	res = app.get(t, c, "/login")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Your account has been created. You are now able to login.")
	assert.Contains(t, res.body, "alert-success")

	// сообщение показывается один раз
	res = app.get(t, c, "/login")
	assert.NotContains(t, res.body, "Your account has been created")

	res = app.login(t, c, "a@x.com", "Secret1!")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)

	res = app.get(t, c, "/")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Logout")

	// вошедших не пускают на регистрацию
	res = app.get(t, c, "/register")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)

	res = app.get(t, c, "/logout")
	assert.Equal(t, http.StatusFound, res.status)
	res = app.get(t, c, "/")
	assert.Contains(t, res.body, "Login")
	assert.NotContains(t, res.body, "Logout")
}

func TestRegister_Duplicates(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "pw").status)

	res := app.register(t, c, "alice", "b@x.com", "pw")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "That username is taken. Please choose a different one.")

	res = app.register(t, c, "bob", "a@x.com", "pw")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "That email is taken. Please choose a different one.")
}

func TestRegister_ValidationErrors(t *testing.T) {
	app := newTestApp(t)
	res := app.post(t, app.browser(t), "/register", url.Values{
		"username": {"a"}, "email": {"bad"}, "password": {"x"}, "confirm_password": {"y"},
	})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Invalid email address.")
	assert.Contains(t, res.body, "Field must be equal to password.")
}

func TestPasswordLongerThanBcryptLimit(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	long := strings.Repeat("p", 80)

	res := app.register(t, c, "alice", "a@x.com", long)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Field cannot be longer than 72 bytes.")

	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "short-pw").status)
	require.Equal(t, http.StatusFound, app.post(t, c, "/reset_password", url.Values{"email": {"a@x.com"}}).status)
	resetURL, err := URLFor("reset_token", "token", app.mailer.lastToken(t))
	require.NoError(t, err)

	res = app.post(t, c, resetURL, url.Values{"password": {long}, "confirm_password": {long}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Field cannot be longer than 72 bytes.")
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "Secret1!").status)
	app.get(t, c, "/login") // съедаем flash регистрации

	wrongPw := app.login(t, c, "a@x.com", "nope")
	unknown := app.login(t, c, "ghost@x.com", "Secret1!")

	assert.Equal(t, http.StatusOK, wrongPw.status)
	assert.Equal(t, wrongPw.status, unknown.status)
	assert.Contains(t, wrongPw.body, "Wrong credentials. Please check your email and password.")
	// отличается только введённая почта
	assert.Equal(t, wrongPw.body, strings.ReplaceAll(unknown.body, "ghost@x.com", "a@x.com"))
}

func TestLoginRequired_RedirectsWithNext(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "pw").status)

	res := app.get(t, c, "/account")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login?next=%2Faccount", res.location)

	res = app.get(t, c, res.location)
	assert.Contains(t, res.body, "Please log in to access this page.")

	res = app.post(t, c, "/login?next=%2Faccount", url.Values{"email": {"a@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/account", res.location)
}

func TestLogin_IgnoresExternalNext(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "pw").status)

	res := app.post(t, c, "/login?next="+url.QueryEscape("//evil.example/x"), url.Values{"email": {"a@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	res := app.post(t, alice, "/post/new", url.Values{"title": {"Hello"}, "content": {"World"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)

	res = app.get(t, alice, "/")
	assert.Contains(t, res.body, "Your post has been successfully published !")
	assert.Contains(t, res.body, "Hello")

	id := app.latestPostID(t)
	postURL, err := URLFor("post", "id", id)
	require.NoError(t, err)

	res = app.get(t, app.browser(t), postURL)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Hello")
	assert.Contains(t, res.body, "World")
	assert.Contains(t, res.body, "alice")
	assert.NotContains(t, res.body, "Delete")

	res = app.get(t, alice, postURL+"/update")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Update Post")
	assert.Contains(t, res.body, `value="Hello"`)

	res = app.post(t, alice, postURL+"/update", url.Values{"title": {"Hi"}, "content": {"There"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, postURL, res.location)

	res = app.get(t, alice, postURL)
	assert.Contains(t, res.body, "Your post has been updated !")
	assert.Contains(t, res.body, "There")
	assert.Contains(t, res.body, "Delete")

	res = app.post(t, alice, postURL+"/delete", nil)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)
	assert.Equal(t, http.StatusNotFound, app.get(t, alice, postURL).status)
}

func TestPost_NonOwnerIsForbidden(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	require.Equal(t, http.StatusFound, app.post(t, alice, "/post/new", url.Values{"title": {"mine"}, "content": {"text"}}).status)
	postURL, err := URLFor("post", "id", app.latestPostID(t))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, app.get(t, bob, postURL+"/update").status)
	// невалидная форма не меняет ответ
	assert.Equal(t, http.StatusForbidden, app.post(t, bob, postURL+"/update", url.Values{"title": {""}}).status)
	assert.Equal(t, http.StatusForbidden, app.post(t, bob, postURL+"/update", url.Values{"title": {"x"}, "content": {"y"}}).status)
	assert.Equal(t, http.StatusForbidden, app.post(t, bob, postURL+"/delete", nil).status)

	res := app.get(t, bob, postURL)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "mine")
}

func TestPost_NotFound(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	assert.Equal(t, http.StatusNotFound, app.get(t, alice, "/post/999").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, alice, "/post/abc").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, alice, "/post/999/update").status)
	assert.Equal(t, http.StatusNotFound, app.post(t, alice, "/post/999/delete", nil).status)
	assert.Equal(t, http.StatusMethodNotAllowed, app.get(t, alice, "/post/1/delete").status)
}

func TestPagination(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	for _, title := range []string{"first", "second", "third"} {
		require.Equal(t, http.StatusFound, app.post(t, alice, "/post/new", url.Values{"title": {title}, "content": {"c"}}).status)
	}
	anon := app.browser(t)

	res := app.get(t, anon, "/")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "third")
	assert.Contains(t, res.body, "second")
	assert.NotContains(t, res.body, ">first<")

	res = app.get(t, anon, "/?page=2")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, ">first<")

	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/?page=3").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/?page=0").status)
	assert.Equal(t, http.StatusOK, app.get(t, anon, "/?page=abc").status)
	// огромные номера страниц: переполнение смещения и выход за пределы int
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/?page=4611686018427387905").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/?page=99999999999999999999").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/user/alice?page=99999999999999999999").status)

	res = app.get(t, anon, "/user/alice")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Posts by alice (3)")
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/user/alice?page=3").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, anon, "/user/nobody").status)
}

func TestEmptyHomePage(t *testing.T) {
	app := newTestApp(t)
	res := app.get(t, app.browser(t), "/")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, http.StatusOK, app.get(t, app.browser(t), "/about").status)
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)
	require.Equal(t, http.StatusFound, app.register(t, c, "alice", "a@x.com", "old-pw").status)
	app.get(t, c, "/login")

	// неизвестная почта: тот же ответ, письма нет
	res := app.post(t, c, "/reset_password", url.Values{"email": {"ghost@x.com"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)
	assert.Equal(t, 0, app.mailer.count())
	assert.Contains(t, app.get(t, c, "/login").body, "An email has been sent with instructions to reset the password.")

	res = app.post(t, c, "/reset_password", url.Values{"email": {"a@x.com"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)
	assert.Equal(t, 1, app.mailer.count())
	app.get(t, c, "/login")

	token := app.mailer.lastToken(t)
	resetURL, err := URLFor("reset_token", "token", token)
	require.NoError(t, err)

	res = app.get(t, c, resetURL)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Reset Password")

	res = app.post(t, c, resetURL, url.Values{"password": {"new-pw"}, "confirm_password": {"new-pw"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)
	assert.Contains(t, app.get(t, c, "/login").body, "Your password has been reset. You are now able to login.")

	// токен одноразовый
	res = app.get(t, c, resetURL)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/reset_password", res.location)
	assert.Contains(t, app.get(t, c, "/reset_password").body, "This is an invalid or expired token.")

	assert.Equal(t, http.StatusOK, app.login(t, c, "a@x.com", "old-pw").status)
	res = app.login(t, c, "a@x.com", "new-pw")
	assert.Equal(t, http.StatusFound, res.status)
}

func TestResetToken_Invalid(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	res := app.get(t, c, "/reset_password/not-a-token")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/reset_password", res.location)

	res = app.post(t, c, "/reset_password/not-a-token", url.Values{"password": {"x"}, "confirm_password": {"x"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/reset_password", res.location)
}

func TestAccount_UpdateWithPicture(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	res := app.get(t, alice, "/account")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `value="alice"`)
	assert.Contains(t, res.body, "/static/profile_pics/default.jpg")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alicia"))
	require.NoError(t, mw.WriteField("email", "alicia@x.com"))
	fw, err := mw.CreateFormFile("picture", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := alice.Post(app.srv.URL+"/account", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	res = read(t, resp)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/account", res.location)

	res = app.get(t, alice, "/account")
	assert.Contains(t, res.body, "Your account has been updated !")

	user, err := app.accounts.GetUserByUsername(context.Background(), "alicia")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}\.png$`, user.ImageFile)
	assert.Contains(t, res.body, "/static/profile_pics/"+user.ImageFile)

	pic := app.get(t, alice, "/static/profile_pics/"+user.ImageFile)
	assert.Equal(t, http.StatusOK, pic.status)
	assert.Equal(t, "png-bytes", pic.body)
}

func TestAccount_RejectsBadExtension(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("email", "alice@x.com"))
	fw, err := mw.CreateFormFile("picture", "me.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("gif"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := alice.Post(app.srv.URL+"/account", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	res := read(t, resp)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "File does not have an approved extension")
}

func TestStaticAndDefaultPicture(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	res := app.get(t, c, "/static/profile_pics/default.jpg")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "default-jpeg", res.body)

	res = app.get(t, c, "/static/main.css")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "body{}", res.body)

	assert.Equal(t, http.StatusNotFound, app.get(t, c, "/static/profile_pics/missing.png").status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	c := app.browser(t)

	res := app.get(t, c, "/healthz")
	assert.Equal(t, http.StatusOK, res.status)
	assert.JSONEq(t, `{"status":"ok"}`, res.body)

	app.pinger.err = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, app.get(t, c, "/healthz").status)
}

func TestURLFor(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{name: "home", want: "/"},
		{name: "home", args: []any{"page", 2}, want: "/?page=2"},
		{name: "post", args: []any{"id", uint(7)}, want: "/post/7"},
		{name: "user_posts", args: []any{"username", "alice", "page", 3}, want: "/user/alice?page=3"},
		{name: "static", args: []any{"filename", "main.css"}, want: "/static/main.css"},
		{name: "login", args: []any{"next", "/account"}, want: "/login?next=%2Faccount"},
	}
	for _, tt := range tests {
		got, err := URLFor(tt.name, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := URLFor("nope")
	assert.Error(t, err)
	_, err = URLFor("post")
	assert.Error(t, err)
}

func TestSafeNext(t *testing.T) {
	for _, next := range []string{"/account", "/post/1/update?x=1"} {
		got, ok := safeNext(next)
		assert.True(t, ok, next)
		assert.Equal(t, next, got)
	}
	for _, next := range []string{"", "account", "//evil.example", "/\\evil.example", "http://evil.example/"} {
		_, ok := safeNext(next)
		assert.False(t, ok, next)
	}
}
