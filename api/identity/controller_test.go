package identity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	registerErr error
	user        *identity.User
}

func (a *stubAuth) Register(username, password string) error {
	return a.registerErr
}

func (a *stubAuth) SignIn(username, password string) (*identity.User, string, error) {
	if a.user == nil || username != a.user.Username {
		return nil, "", service.ErrInvalidCredentials
	}
	return a.user, a.user.ID.String(), nil
}

type stubUsers struct {
	user *identity.User
}

func (u *stubUsers) Save(*identity.User) error { return nil }

func (u *stubUsers) ByID(id uuid.UUID) (*identity.User, error) {
	if u.user == nil || u.user.ID != id {
		return nil, i.ErrUserNotFound
	}
	return u.user, nil
}

func (u *stubUsers) ByUsername(name string) (*identity.User, error) {
	return nil, i.ErrUserNotFound
}

// idTokenizer treats the token as the user id.
type idTokenizer struct{}

func (idTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	return claims[identity.ClaimUserID].(string), nil
}

func (idTokenizer) Decode(token string) (map[string]interface{}, error) {
	return map[string]interface{}{identity.ClaimUserID: token}, nil
}

func newEngine(c *IdentityServer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c.RegisterPublic(r.Group("/v1"))
	protected := r.Group("/v1")
	protected.Use(Authoriz(idTokenizer{}))
	c.RegisterProtected(protected)
	return r
}

func post(h http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIdentityServer(t *testing.T) {
	user := &identity.User{ID: uuid.New(), Username: "alice", Wins: 3, Losses: 1}
	creds := AuthRequest{Username: "alice", Password: "pw"}

	t.Run("Register", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{nil, http.StatusCreated},
			{i.ErrUsernameConflict, http.StatusConflict},
			{identity.ErrWeakPassword, http.StatusBadRequest},
			{identity.ErrUsernameFormat, http.StatusBadRequest},
			{assert.AnError, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			h := newEngine(NewIdentityServer(&stubAuth{registerErr: tc.err}, &stubUsers{}))
			assert.Equal(t, tc.code, post(h, "/v1/auth/register", creds).Code)
		}
	})

	t.Run("Register needs credentials", func(t *testing.T) {
		h := newEngine(NewIdentityServer(&stubAuth{}, &stubUsers{}))
		assert.Equal(t, http.StatusBadRequest, post(h, "/v1/auth/register", AuthRequest{Username: "alice"}).Code)
	})

	t.Run("Login", func(t *testing.T) {
		h := newEngine(NewIdentityServer(&stubAuth{user: user}, &stubUsers{user: user}))
		w := post(h, "/v1/auth/login", creds)
		require.Equal(t, http.StatusOK, w.Code)

		var res AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, user.ID.String(), res.Token)
		assert.Equal(t, 3, res.Wins)
		assert.Equal(t, 1, res.Losses)

		w = post(h, "/v1/auth/login", AuthRequest{Username: "bob", Password: "pw"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me", func(t *testing.T) {
		h := newEngine(NewIdentityServer(&stubAuth{user: user}, &stubUsers{user: user}))

		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+user.ID.String())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"played":4`)

		req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-uuid")
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Token "+user.ID.String())
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
