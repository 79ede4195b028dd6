package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"groundchat/internal/app/chat"
	"groundchat/internal/app/completion"
	"groundchat/internal/app/prompt"
	"groundchat/internal/app/search"
	"groundchat/internal/app/session"
	"groundchat/internal/app/user"
	"groundchat/internal/configs"
	"groundchat/internal/pkg/auth/jwt"
	"groundchat/internal/pkg/resp"
)

type stubRetriever struct{ results []search.Result }

func (s stubRetriever) Retrieve(context.Context, string) []search.Result { return s.results }

type stubCompleter struct {
	calls  int
	answer string
	err    error
}

func (s *stubCompleter) Complete(_ context.Context, messages []prompt.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer + ": " + messages[1].Content, nil
}

type testApp struct {
	handler   http.Handler
	completer *stubCompleter
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	pages, err := NewPages()
	require.NoError(t, err)

	creds := user.NewCredentials(user.NewMemoryStore(), user.WithCost(bcrypt.MinCost))
	registry := session.NewMemoryRegistry(0)
	t.Cleanup(func() { _ = registry.Close() })
	guard := session.NewGuard(creds, registry, "test-secret", time.Hour)

	completer := &stubCompleter{answer: "echo"}
	deps := &AppDeps{
		Config:      &configs.AppConfig{Environment: "development"},
		Credentials: creds,
		Guard:       guard,
		Chat:        chat.NewService(guard, stubRetriever{}, prompt.Assembler{AsOf: "2025"}, completer),
		Pages:       pages,
	}

	return &testApp{handler: Router(deps), completer: completer}
}

func (a *testApp) do(method, target string, body string, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", contentType)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func (a *testApp) postForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded", cookies...)
}

func (a *testApp) chat(body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/api/chat", body, "application/json", cookies...)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == jwt.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", jwt.CookieName)
	return nil
}

func (a *testApp) register(t *testing.T, username, email, password string) *http.Cookie {
	t.Helper()
	rec := a.postForm("/register", url.Values{"username": {username}, "email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/chat", rec.Header().Get("Location"))
	return sessionCookie(t, rec)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) resp.ErrorBody {
	t.Helper()
	var body resp.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_PublicEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create an account")

	rec = app.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"groundchat"}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/static/chat.js", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/chat")

	rec = app.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/login", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)

	rec = app.do(http.MethodGet, "/register", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/register"`)
}

func TestRouter_AnonymousIsGated(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/chat", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/logout", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.chat(`{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec).Error)
	assert.Zero(t, app.completer.calls)
}

func TestRouter_RegisterChatLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "ada", "ada@example.com", "s3cret")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	rec := app.do(http.MethodGet, "/chat", "", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada")
	assert.Contains(t, rec.Body.String(), "/static/chat.js")

	rec = app.do(http.MethodGet, "/login", "", "", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/chat", rec.Header().Get("Location"))

	rec = app.chat(`{"message":"hello"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"echo: hello"}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/logout", "", "", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	rec = app.chat(`{"message":"hello again"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, app.completer.calls)
}

func TestRouter_RegisterValidation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ada", "ada@example.com", "s3cret")

	rec := app.postForm("/register", url.Values{"username": {"grace"}, "password": {"pw"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username, email and password are required.")
	assert.Contains(t, rec.Body.String(), `value="grace"`)

	rec = app.postForm("/register", url.Values{"username": {"ada"}, "email": {"other@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists.")
	assert.Empty(t, rec.Result().Cookies())

	rec = app.postForm("/register", url.Values{"username": {"grace"}, "email": {"ada@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered.")

	rec = app.postForm("/register", url.Values{"username": {"grace"}, "email": {"g@example.com"}, "password": {strings.Repeat("p", 73)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected registrations left nothing behind.
	app.register(t, "grace", "grace@example.com", "pw")
}

func TestRouter_RegisterMultibytePassword(t *testing.T) {
	app := newTestApp(t)

	// 30 characters, 90 bytes: over the bcrypt limit although short in characters.
	rec := app.postForm("/register", url.Values{"username": {"mei"}, "email": {"mei@example.com"}, "password": {strings.Repeat("密", 30)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password is too long (at most 72 bytes).")
	assert.Empty(t, rec.Result().Cookies())

	// 24 characters, exactly 72 bytes.
	password := strings.Repeat("密", 24)
	cookie := app.register(t, "mei", "mei@example.com", password)
	assert.NotEmpty(t, cookie.Value)

	rec = app.postForm("/login", url.Values{"username": {"mei"}, "password": {password}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRouter_LoginFailuresLookAlike(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ada", "ada@example.com", "s3cret")

	unknown := app.postForm("/login", url.Values{"username": {"nobody"}, "password": {"s3cret"}})
	wrong := app.postForm("/login", url.Values{"username": {"ada"}, "password": {"nope"}})
	empty := app.postForm("/login", url.Values{"username": {"ada"}})

	for _, rec := range []*httptest.ResponseRecorder{unknown, wrong, empty} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username or password.")
		assert.Empty(t, rec.Result().Cookies())
	}
	assert.Equal(t, unknown.Body.String(), strings.Replace(wrong.Body.String(), `value="ada"`, `value="nobody"`, 1))

	rec := app.postForm("/login", url.Values{"username": {"ada"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/chat", rec.Header().Get("Location"))

	rec = app.chat(`{"message":"hi"}`, sessionCookie(t, rec))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ChatErrors(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "ada", "ada@example.com", "s3cret")

	rec := app.chat(`{"message":""}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No message provided", decodeError(t, rec).Error)

	rec = app.chat(`not json`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, app.completer.calls)

	app.completer.err = &completion.ProviderError{Message: "Insufficient Balance", StatusCode: 402}
	rec = app.chat(`{"message":"hi"}`, cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Insufficient Balance", decodeError(t, rec).Error)

	app.completer.err = errors.New("dial tcp: connection refused")
	rec = app.chat(`{"message":"hi"}`, cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "dial tcp: connection refused", decodeError(t, rec).Error)
}

func TestRouter_BearerTokenForAPI(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "ada", "ada@example.com", "s3cret")

	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"cli"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", "Bearer "+cookie.Value)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}
