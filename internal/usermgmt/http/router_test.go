package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/notify"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/sqlite"
	"github.com/aussiebroadwan/usermgmt/pkg/cryptox"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	bootstrapToken = "bootstrap-token"
	fixedCode      = "424242"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "usermgmt-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Every test shares the httptest remote address
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// codeMailer remembers the last code mailed to each address.
type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

type testServer struct {
	handler http.Handler
	hub     *notify.Hub
	mailer  *codeMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "usermgmt.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	secret := []byte(strings.Repeat("k", jwtx.MinSecretLength))
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{Issuer: "usermgmt"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(logger, 64, hub)
	dispatcher.Start()
	t.Cleanup(func() {
		_ = dispatcher.Stop(context.Background())
		hub.Close()
	})

	hasher := cryptox.BcryptHasher{Cost: bcrypt.MinCost}
	mailer := &codeMailer{codes: map[string]string{}}

	r := NewRouter(signer, verifier, "test", st, logger)
	r.AccountService = &service.AccountService{Store: st, Hasher: hasher, Notifier: dispatcher}
	r.DirectoryService = &service.DirectoryService{Store: st, Hasher: hasher, Notifier: dispatcher}
	r.VerificationService = &service.VerificationService{
		Store:    st,
		Mailer:   mailer,
		Notifier: dispatcher,
		NewCode:  func() (string, error) { return fixedCode, nil },
	}
	r.TokenService = &service.TokenService{Signer: signer, Issuer: "usermgmt"}
	r.RolesService = &service.RolesService{Store: st}
	r.StatusService = &service.AccountStatusService{Store: st}
	r.ProfileService = &service.ProfileService{Store: st, Notifier: dispatcher}
	r.BootstrapService = &service.BootstrapService{Store: st, Hasher: hasher, Token: bootstrapToken}
	r.Hub = hub
	r.ApplyRoutes()

	return &testServer{handler: r, hub: hub, mailer: mailer}
}

// do sends a request and decodes the envelope of the response.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, usersdk.Envelope) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env usersdk.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, rec.Code, env.StatusCode)
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env usersdk.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *testServer) register(t *testing.T, username, email string, roleID int64) usersdk.UserInfo {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/users", "", usersdk.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "secret-pass",
		RoleID:   roleID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	return decodeData[usersdk.UserInfo](t, env)
}

func (s *testServer) login(t *testing.T, identifier, password string) usersdk.TokenResponse {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/login", "", usersdk.LoginRequest{Username: identifier, Password: password})
	require.Equal(t, http.StatusOK, code, env.Message)
	return decodeData[usersdk.TokenResponse](t, env)
}

func (s *testServer) bootstrapAdmin(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(usersdk.BootstrapRequest{
		AdminUsername: "rootadmin",
		AdminEmail:    "root@example.com",
		AdminPassword: "admin-secret",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bootstrap", bytes.NewReader(raw))
	req.Header.Set("X-Bootstrap-Token", bootstrapToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return s.login(t, "rootadmin", "admin-secret").AccessToken
}

func TestRegisterLoginAndLogout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	user := s.register(t, "viewer01", "viewer01@example.com", domain.RoleViewer)
	require.Equal(t, domain.RoleViewer, user.RoleID)
	require.Equal(t, domain.StatusActive, user.AccountStatusID)
	require.Equal(t, usersdk.ProfileViewer, user.Profile.Kind)

	tok := s.login(t, "viewer01@example.com", "secret-pass")
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, user.ID, tok.User.ID)

	code, env := s.do(t, http.MethodPost, "/logout", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, decodeData[usersdk.LogoutResponse](t, env).LoggedOut)

	code, env = s.do(t, http.MethodPost, "/logout", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Already logged out", env.Message)
	require.False(t, decodeData[usersdk.LogoutResponse](t, env).LoggedOut)

	code, env = s.do(t, http.MethodGet, "/login-status/"+strconv.FormatInt(user.ID, 10), tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, decodeData[usersdk.LoginHistoryInfo](t, env).LoginSuccessful)
}

func TestEnvelopeOnErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "viewer02", "viewer02@example.com", domain.RoleViewer)

	t.Run("wrong password", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/login", "", usersdk.LoginRequest{Username: "viewer02", Password: "nope-nope"})
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Client Error", env.Type)
	})

	t.Run("unknown account", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/login", "", usersdk.LoginRequest{Username: "ghost", Password: "whatever"})
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("validation details", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/users", "", usersdk.RegisterRequest{
			Username: "abc",
			Email:    "not-an-email",
			Password: "secret-pass",
			RoleID:   domain.RoleViewer,
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Validation failed", env.Message)
		details := decodeData[map[string]string](t, env)
		require.Contains(t, details, "username")
		require.Contains(t, details, "email")
	})

	t.Run("duplicate username", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/users", "", usersdk.RegisterRequest{
			Username: "viewer02",
			Email:    "other@example.com",
			Password: "secret-pass",
			RoleID:   domain.RoleViewer,
		})
		require.Equal(t, http.StatusConflict, code)
	})

	t.Run("missing token", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/roles", "", nil)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Client Error", env.Type)
	})
}

func TestAdminOnlyRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	viewer := s.register(t, "viewer03", "viewer03@example.com", domain.RoleViewer)
	viewerTok := s.login(t, "viewer03", "secret-pass").AccessToken
	adminTok := s.bootstrapAdmin(t)

	t.Run("viewer is forbidden", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/users/count", viewerTok, nil)
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("admin registers another admin", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/users", "", usersdk.RegisterRequest{
			Username: "admin02", Email: "admin02@example.com", Password: "secret-pass", RoleID: domain.RolePlatformAdmin,
		})
		require.Equal(t, http.StatusForbidden, code)

		raw, err := json.Marshal(usersdk.RegisterRequest{
			Username: "admin02", Email: "admin02@example.com", Password: "secret-pass", RoleID: domain.RolePlatformAdmin,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(raw))
		req.Header.Set("Authorization", "Bearer "+adminTok)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("count and list", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/users/count", adminTok, nil)
		require.Equal(t, http.StatusOK, code)
		require.EqualValues(t, 3, decodeData[usersdk.CountResponse](t, env).Total)

		code, env = s.do(t, http.MethodGet, "/users/2/0", adminTok, nil)
		require.Equal(t, http.StatusOK, code)
		page := decodeData[usersdk.UserPage](t, env)
		require.Len(t, page.Users, 2)
		require.Equal(t, 2, page.NextCursor)
	})

	t.Run("query by property", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/users/by-property?property=username&value=VIEWER&limit=5", adminTok, nil)
		require.Equal(t, http.StatusOK, code)
		users := decodeData[[]usersdk.UserInfo](t, env)
		require.Len(t, users, 1)
		require.Equal(t, viewer.ID, users[0].ID)

		code, _ = s.do(t, http.MethodGet, "/users/by-property?property=shoeSize&value=9", adminTok, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("change status", func(t *testing.T) {
		path := "/users/" + strconv.FormatInt(viewer.ID, 10) + "/status/" + strconv.FormatInt(domain.StatusBanned, 10)
		code, env := s.do(t, http.MethodPut, path, adminTok, nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, domain.StatusBanned, decodeData[usersdk.AccountStatusInfo](t, env).ID)

		code, _ = s.do(t, http.MethodPost, "/login", "", usersdk.LoginRequest{Username: "viewer03", Password: "secret-pass"})
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("remove", func(t *testing.T) {
		path := "/users/" + strconv.FormatInt(viewer.ID, 10)
		code, _ := s.do(t, http.MethodDelete, path, adminTok, nil)
		require.Equal(t, http.StatusOK, code)

		code, _ = s.do(t, http.MethodDelete, path, adminTok, nil)
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestSelfOrAdminAccess(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	alice := s.register(t, "alice01", "alice01@example.com", domain.RoleViewer)
	bob := s.register(t, "bobby01", "bobby01@example.com", domain.RoleViewer)
	aliceTok := s.login(t, "alice01", "secret-pass").AccessToken

	code, _ := s.do(t, http.MethodGet, "/loginhistory/"+strconv.FormatInt(bob.ID, 10)+"/0/10", aliceTok, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, http.MethodGet, "/loginhistory/"+strconv.FormatInt(alice.ID, 10)+"/0/10", aliceTok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decodeData[[]usersdk.LoginHistoryInfo](t, env), 1)

	code, _ = s.do(t, http.MethodPut, "/users/update", aliceTok, usersdk.UpdateAccountRequest{UserID: bob.ID, Country: "AU"})
	require.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/users/update", aliceTok, usersdk.UpdateAccountRequest{Country: "AU", State: "NSW"})
	require.Equal(t, http.StatusOK, code)
	updated := decodeData[usersdk.TokenResponse](t, env)
	require.Equal(t, "AU", updated.User.Country)
	require.NotEmpty(t, updated.AccessToken)

	code, _ = s.do(t, http.MethodPut, "/deactivate-account", aliceTok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/login", "", usersdk.LoginRequest{Username: "alice01", Password: "secret-pass"})
	require.Equal(t, http.StatusForbidden, code)
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	viewer := s.register(t, "viewer04", "viewer04@example.com", domain.RoleViewer)
	tok := s.login(t, "viewer04", "secret-pass").AccessToken
	id := strconv.FormatInt(viewer.ID, 10)

	code, env := s.do(t, http.MethodGet, "/viewers/"+id, tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, usersdk.ProfileViewer, decodeData[usersdk.UserInfo](t, env).Profile.Kind)

	code, _ = s.do(t, http.MethodGet, "/content-creators/"+id, tok, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPut, "/content-creators/"+id, tok, usersdk.Profile{
		ContentCreator: &usersdk.ContentCreatorProfile{},
	})
	require.Equal(t, http.StatusNotFound, code)
}

func TestVerificationFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "viewer05", "viewer05@example.com", domain.RoleViewer)

	code, env := s.do(t, http.MethodGet, "/sendemailcode/viewer05@example.com", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, decodeData[usersdk.CodeResponse](t, env).Success)
	require.Equal(t, fixedCode, s.mailer.codes["viewer05@example.com"])

	code, _ = s.do(t, http.MethodGet, "/sendemailcode/not-an-email", "", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/validateemailcode/viewer05@example.com/000000", "", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.False(t, decodeData[usersdk.CodeResponse](t, env).Success)

	code, env = s.do(t, http.MethodPost, "/resetpassword", "", usersdk.ResetPasswordRequest{
		Email:       "viewer05@example.com",
		Code:        fixedCode,
		NewPassword: "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NotEmpty(t, decodeData[usersdk.TokenResponse](t, env).AccessToken)

	// The code was consumed by the reset
	code, _ = s.do(t, http.MethodGet, "/validateemailcode/viewer05@example.com/"+fixedCode, "", nil)
	require.Equal(t, http.StatusBadRequest, code)

	s.login(t, "viewer05", "brand-new-pass")
}

func TestRolesAndStatuses(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	adminTok := s.bootstrapAdmin(t)

	code, env := s.do(t, http.MethodGet, "/roles", adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decodeData[[]usersdk.RoleInfo](t, env), 4)

	code, env = s.do(t, http.MethodPost, "/roles", adminTok, usersdk.RoleRequest{
		Name:        "Moderator",
		Description: "Moderates content",
		Permissions: []usersdk.PermissionRequest{{PermissionID: 1, Name: "content:hide"}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	role := decodeData[usersdk.RoleInfo](t, env)
	require.Len(t, role.Permissions, 1)

	code, _ = s.do(t, http.MethodPost, "/roles", adminTok, usersdk.RoleRequest{Name: "Moderator"})
	require.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodDelete, "/roles/"+strconv.FormatInt(domain.RoleViewer, 10), adminTok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/roles/"+strconv.FormatInt(domain.RolePlatformAdmin, 10), adminTok, nil)
	require.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodPost, "/account-status", adminTok, usersdk.AccountStatusRequest{Name: "Archived"})
	require.Equal(t, http.StatusCreated, code)
	st := decodeData[usersdk.AccountStatusInfo](t, env)

	code, _ = s.do(t, http.MethodDelete, "/account-status/"+strconv.FormatInt(st.ID, 10), adminTok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/account-status/"+strconv.FormatInt(st.ID, 10), adminTok, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/bootstrap", "", usersdk.BootstrapRequest{})
	require.Equal(t, http.StatusUnauthorized, code)

	s.bootstrapAdmin(t)

	raw, err := json.Marshal(usersdk.BootstrapRequest{
		AdminUsername: "second", AdminEmail: "second@example.com", AdminPassword: "admin-secret",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bootstrap", bytes.NewReader(raw))
	req.Header.Set("X-Bootstrap-Token", bootstrapToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	t.Run("generates a password when none is given", func(t *testing.T) {
		t.Parallel()
		fresh := newTestServer(t)

		raw, err := json.Marshal(usersdk.BootstrapRequest{AdminUsername: "rootadmin", AdminEmail: "root@example.com"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/bootstrap", bytes.NewReader(raw))
		req.Header.Set("X-Bootstrap-Token", bootstrapToken)
		rec := httptest.NewRecorder()
		fresh.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var env usersdk.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		res := decodeData[usersdk.BootstrapResponse](t, env)
		require.Equal(t, "rootadmin", res.Admin.Username)
		require.NotEmpty(t, res.GeneratedPassword)

		fresh.login(t, "rootadmin", res.GeneratedPassword)
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", decodeData[usersdk.HealthResponse](t, env).Status)

	code, env = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, code)
	health := decodeData[usersdk.HealthResponse](t, env)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "test", health.Version)
}

func TestNotificationStream(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	adminTok := s.bootstrapAdmin(t)

	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/hubs/notifications", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminTok)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)
	s.register(t, "viewer06", "viewer06@example.com", domain.RoleViewer)

	var event, data string
	for event == "" || data == "" {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
	require.Equal(t, "ReceiveUserNotification", event)

	var e domain.Event
	require.NoError(t, json.Unmarshal([]byte(data), &e))
	require.Equal(t, domain.EventUserRegistered, e.Type)
	require.Equal(t, "viewer06@example.com", e.Email)
}
