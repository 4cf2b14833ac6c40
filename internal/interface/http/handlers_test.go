package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/container"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/dbmigrate"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/sqlite"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
	"github.com/oksasatya/starter-webapi/internal/router"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
	"github.com/oksasatya/starter-webapi/pkg/validation"
)

const (
	testSalt      = "handler-test-salt"
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	adminID string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	container.Reset()
	t.Cleanup(container.Reset)

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, dbmigrate.Up(db, dbmigrate.DriverSQLite, nil))
	repo := sqlite.NewUserRepository(db)

	container.SetConfig(&config.Config{
		JWT:                 config.JWTParameters{Key: "handler-test-key", Issuer: "starter", Audience: "starter-clients"},
		PasswordSalt:        testSalt,
		AuthRateLimit:       10,
		AuthRateWindow:      time.Minute,
		DebugMetricsEnabled: true,
	})
	container.SetLogger(helpers.NewDiscardLogger())
	container.SetUserRepo(repo)
	container.SetPinger(db)

	admin, err := entity.NewUser(uuid.NewString(), adminEmail, helpers.NewPasswordHasher(testSalt).Hash(adminPassword),
		"Ada", "Admin", time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC), entity.GenderOther, entity.RoleAdmin, "",
		entity.Address{AddressLine: "1 Root Rd", City: "Adminton", ZipCode: "00001", Country: "US"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, admin)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RealIP(), middleware.Metrics())
	reg := router.NewRegistry(engine)
	router.InitModules(reg)
	reg.RegisterAll()

	return &testAPI{t: t, engine: engine, adminID: admin.ID}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email_address": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var res application.LoginResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(a.t, res.AccessToken)
	return res.AccessToken
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email_address": email,
		"password":      "password123",
		"first_name":    "Test",
		"last_name":     "User",
		"birthday":      "1990-01-01",
		"gender":        "Male",
		"phone":         "+15550100",
		"address": map[string]any{
			"address_line": "123 Main St",
			"city":         "Springfield",
			"zip_code":     "12345",
			"country":      "US",
		},
	}
}

func (a *testAPI) register(email string) application.UserDto {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/register", "", registerBody(email))
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var u application.UserDto
	require.NoError(a.t, json.Unmarshal(env.Data, &u))
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	u := api.register("test@example.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "User", u.Role)
	assert.Equal(t, "1990-01-01", u.Birthday)
	assert.Equal(t, "Springfield", u.Address.City)

	w, _ := api.do(http.MethodPost, "/api/auth/register", "", registerBody("test@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)

	token := api.login("test@example.com", "password123")

	w, env := api.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me application.UserDto
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, u.ID, me.ID)
	assert.NotEmpty(t, env.RequestID)
	assert.NotContains(t, string(env.Data), "hashed_password")
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)
	body := registerBody("not-an-email")
	body["gender"] = "Robot"
	delete(body, "password")

	w, env := api.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "email_address")
	assert.Contains(t, details, "gender")
	assert.Contains(t, details, "password")
}

func TestLogin_Failures(t *testing.T) {
	api := newTestAPI(t)
	api.register("test@example.com")

	for name, body := range map[string]map[string]string{
		"wrong password": {"email_address": "test@example.com", "password": "nope-nope"},
		"unknown email":  {"email_address": "ghost@example.com", "password": "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			w, env := api.do(http.MethodPost, "/api/auth/login", "", body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestUsers_RequireToken(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/me", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUser_Access(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com")
	bob := api.register("bob@example.com")
	aliceToken := api.login("alice@example.com", "password123")
	adminToken := api.login(adminEmail, adminPassword)

	w, _ := api.do(http.MethodGet, "/api/users/"+alice.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/"+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/"+bob.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func updateBody() map[string]any {
	body := registerBody("updated@example.com")
	delete(body, "password")
	body["first_name"] = "Updated"
	body["address"] = map[string]any{
		"address_line": "456 New Street",
		"city":         "Shelbyville",
		"zip_code":     "54321",
		"country":      "US",
	}
	return body
}

func TestUpdateUser(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("test@example.com")
	token := api.login("test@example.com", "password123")

	w, env := api.do(http.MethodPut, "/api/users/"+u.ID, token, updateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got application.UserDto
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "updated@example.com", got.EmailAddress)
	assert.Equal(t, "456 New Street", got.Address.AddressLine)
	assert.Equal(t, "User", got.Role)

	// password unchanged, email changed
	api.login("updated@example.com", "password123")
}

func TestUpdateUser_RoleChange(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("test@example.com")
	token := api.login("test@example.com", "password123")

	body := updateBody()
	body["role"] = "Admin"
	w, _ := api.do(http.MethodPut, "/api/users/"+u.ID, token, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := api.login(adminEmail, adminPassword)
	w, env := api.do(http.MethodPut, "/api/users/"+u.ID, adminToken, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got application.UserDto
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Admin", got.Role)
}

func TestUpdateUser_Conflicts(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("test@example.com")
	api.register("updated@example.com")
	adminToken := api.login(adminEmail, adminPassword)

	w, _ := api.do(http.MethodPut, "/api/users/"+u.ID, adminToken, updateBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPut, "/api/users/"+uuid.NewString(), adminToken, updateBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("test@example.com")
	userToken := api.login("test@example.com", "password123")
	adminToken := api.login(adminEmail, adminPassword)

	w, _ := api.do(http.MethodDelete, "/api/users/"+u.ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/users/"+u.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/"+u.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/users/"+u.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the deleted user's token no longer resolves to an account
	w, _ = api.do(http.MethodGet, "/api/users/"+u.ID, userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.do(http.MethodGet, "/api/users/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearch_Unavailable(t *testing.T) {
	api := newTestAPI(t)
	api.register("test@example.com")
	userToken := api.login("test@example.com", "password123")
	adminToken := api.login(adminEmail, adminPassword)

	w, _ := api.do(http.MethodGet, "/api/users/search?q=test", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/search?q=test", adminToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogout_WithoutRedis(t *testing.T) {
	api := newTestAPI(t)
	api.register("test@example.com")
	token := api.login("test@example.com", "password123")

	w, _ := api.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "starter_http_request_duration_seconds")

	// no trusted proxies: a forged loopback header from a public peer is ignored
	req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
	req.RemoteAddr = "203.0.113.7:4711"
	req.Header.Set("X-Real-IP", "127.0.0.1")
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
	req.RemoteAddr = "127.0.0.1:4711"
	rec = httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memstats")
}
