package server

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"visaserbia/internal/applications"
	"visaserbia/internal/cache"
	"visaserbia/internal/core"
	"visaserbia/internal/testimonials"
	"visaserbia/internal/users"
)

// In-memory stores for handler tests.

type memUsers struct {
	byID map[string]*core.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*core.User{}} }

func (m *memUsers) Create(_ context.Context, u *core.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return users.ErrDuplicateEmail
		}
	}
	copied := *u
	m.byID[u.ID] = &copied
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*core.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*core.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) List(_ context.Context) ([]core.User, error) {
	out := make([]core.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) Close() error { return nil }

type memApps struct {
	byID map[string]*core.VisaApplication
}

func newMemApps() *memApps { return &memApps{byID: map[string]*core.VisaApplication{}} }

func (m *memApps) Create(_ context.Context, app *core.VisaApplication) error {
	copied := *app
	m.byID[app.ID] = &copied
	return nil
}

func (m *memApps) GetByID(_ context.Context, id string) (*core.VisaApplication, error) {
	app, ok := m.byID[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *memApps) ListByUser(_ context.Context, userID string) ([]core.VisaApplication, error) {
	var out []core.VisaApplication
	for _, app := range m.byID {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memApps) ListAll(_ context.Context) ([]core.VisaApplication, error) {
	out := make([]core.VisaApplication, 0, len(m.byID))
	for _, app := range m.byID {
		out = append(out, *app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memApps) Update(_ context.Context, id string, upd core.ApplicationUpdate) (*core.VisaApplication, error) {
	app, ok := m.byID[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	if upd.Status != nil {
		app.Status = *upd.Status
	}
	if upd.AdminNotes != nil {
		app.AdminNotes = *upd.AdminNotes
	}
	if upd.DepositPaid != nil {
		app.DepositPaid = *upd.DepositPaid
	}
	if upd.TotalPaid != nil {
		app.TotalPaid = *upd.TotalPaid
	}
	app.UpdatedAt = time.Now().UTC()
	copied := *app
	return &copied, nil
}

func (m *memApps) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return applications.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memApps) AddDocument(_ context.Context, id string, doc core.DocumentInfo) error {
	app, ok := m.byID[id]
	if !ok {
		return applications.ErrNotFound
	}
	app.Documents = append(app.Documents, doc)
	app.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memApps) Stats(_ context.Context) (*core.ApplicationStats, error) {
	all, _ := m.ListAll(context.Background())
	stats := &core.ApplicationStats{TotalApplications: len(all)}
	for _, app := range all {
		switch app.Status {
		case core.StatusPendiente:
			stats.Pending++
		case core.StatusAprobado:
			stats.Approved++
		case core.StatusRechazado:
			stats.Rejected++
		}
		stats.TotalRevenue += app.TotalPaid
		if app.Status != core.StatusRechazado {
			stats.PendingRevenue += app.Price - app.TotalPaid
		}
	}
	return stats, nil
}

func (m *memApps) Close() error { return nil }

type memStories struct {
	list []core.Testimonial
}

func (m *memStories) Create(_ context.Context, t *core.Testimonial) error {
	m.list = append(m.list, *t)
	return nil
}

func (m *memStories) ListActive(_ context.Context) ([]core.Testimonial, error) {
	var out []core.Testimonial
	for _, t := range m.list {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStories) ListAll(_ context.Context) ([]core.Testimonial, error) {
	out := append([]core.Testimonial(nil), m.list...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStories) Delete(_ context.Context, id string) error {
	for i, t := range m.list {
		if t.ID == id {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return testimonials.ErrNotFound
}

func (m *memStories) Toggle(_ context.Context, id string) (bool, error) {
	for i := range m.list {
		if m.list[i].ID == id {
			m.list[i].IsActive = !m.list[i].IsActive
			return m.list[i].IsActive, nil
		}
	}
	return false, testimonials.ErrNotFound
}

func (m *memStories) Close() error { return nil }

// mockStorage satisfies storage.Storage for the health endpoint.
type mockStorage struct {
	pingErr error
}

func (m *mockStorage) Type() string                   { return "sqlite" }
func (m *mockStorage) SQLiteDB() *sql.DB              { return nil }
func (m *mockStorage) PostgreSQLPool() *pgxpool.Pool  { return nil }
func (m *mockStorage) MongoDatabase() *mongo.Database { return nil }
func (m *mockStorage) Ping(_ context.Context) error   { return m.pingErr }
func (m *mockStorage) Close() error                   { return nil }

type testEnv struct {
	server  *Server
	users   *memUsers
	apps    *memApps
	stories *memStories
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	userStore := newMemUsers()
	appStore := newMemApps()
	storyStore := &memStories{}

	// Short snapshot TTL so listing changes show up between requests.
	public := testimonials.NewCachedReader(storyStore, cache.NewLocalCache(""), time.Millisecond)

	handler := NewHandler(core.DefaultCatalog(), userStore, appStore, storyStore, public, &mockStorage{})
	srv := New(handler, &Config{
		AdminUsername: "admin",
		AdminPassword: "secreto123",
	})
	return &testEnv{server: srv, users: userStore, apps: appStore, stories: storyStore}
}

func (e *testEnv) do(t *testing.T, method, target, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func seedUser(t *testing.T, env *testEnv, email string) *core.User {
	t.Helper()
	hash, err := users.HashPassword("contraseña123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &core.User{
		ID:             "user-" + email,
		Email:          email,
		PasswordHash:   hash,
		FullName:       "María González Pérez",
		Phone:          "+53 52341678",
		PassportNumber: "CUB987654",
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Bienvenido") {
		t.Errorf("welcome message missing, got: %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["database"] != "ok" {
		t.Errorf("expected database ok, got %q", resp["database"])
	}
}

func TestHealthDegraded(t *testing.T) {
	storyStore := &memStories{}
	public := testimonials.NewCachedReader(storyStore, cache.NewLocalCache(""), time.Millisecond)
	handler := NewHandler(core.DefaultCatalog(), newMemUsers(), newMemApps(), storyStore, public,
		&mockStorage{pingErr: errors.New("connection refused")})
	srv := New(handler, &Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("expected status degraded, got %q", resp["status"])
	}
	if resp["database"] != "unavailable" {
		t.Errorf("expected database unavailable, got %q", resp["database"])
	}
}

func TestCORSAllowsCrossOrigin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/testimonials", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://visaserbia.example")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
	}

	// Preflight
	rec = env.do(t, http.MethodOptions, "/api/testimonials", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://visaserbia.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight missing Access-Control-Allow-Origin, got %q", got)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, http.MethodGet) {
		t.Errorf("preflight does not allow GET: %q", methods)
	}
}

func TestVisaTypes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/visa-types", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["turismo"].Price != 1500 {
		t.Errorf("expected turismo price 1500, got %d", resp["turismo"].Price)
	}
	if resp["trabajo"].Price != 2500 {
		t.Errorf("expected trabajo price 2500, got %d", resp["trabajo"].Price)
	}
}

func TestTestimonialsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/testimonials", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got: %s", body)
	}
}

func TestTestimonialsListingAndETag(t *testing.T) {
	env := newTestEnv(t)
	env.stories.list = []core.Testimonial{
		{ID: "t1", ClientName: "Carlos Pérez", CreatedAt: time.Now().UTC().Add(-time.Hour), IsActive: true},
		{ID: "t2", ClientName: "Ana Rodríguez", CreatedAt: time.Now().UTC(), IsActive: true},
		{ID: "t3", ClientName: "Oculto", CreatedAt: time.Now().UTC(), IsActive: false},
	}

	rec := env.do(t, http.MethodGet, "/api/testimonials", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var list []core.Testimonial
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 active testimonials, got %d", len(list))
	}
	if list[0].ID != "t2" {
		t.Errorf("expected newest first, got %s", list[0].ID)
	}
	if strings.Contains(rec.Body.String(), "is_active") {
		t.Errorf("public listing leaks is_active: %s", rec.Body.String())
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	rec = env.do(t, http.MethodGet, "/api/testimonials", "", func(r *http.Request) {
		r.Header.Set("If-None-Match", etag)
	})
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected status 304, got %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"nuevo@gmail.com","password":"contraseña123","full_name":"Juan Pérez","phone":"+53 51234567","passport_number":"CUB123456"}`
	rec := env.do(t, http.MethodPost, "/api/auth/register", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Usuario registrado exitosamente") {
		t.Errorf("success message missing, got: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("response must not leak password fields: %s", rec.Body.String())
	}

	// Same email again
	rec = env.do(t, http.MethodPost, "/api/auth/register", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "El email ya está registrado") {
		t.Errorf("duplicate message missing, got: %s", rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "maria@gmail.com")

	rec := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"maria@gmail.com","password":"contraseña123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Login exitoso") {
		t.Errorf("success message missing, got: %s", rec.Body.String())
	}

	// Wrong password and unknown email respond identically.
	rec = env.do(t, http.MethodPost, "/api/auth/login", `{"email":"maria@gmail.com","password":"incorrecta"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	wrongPass := rec.Body.String()

	rec = env.do(t, http.MethodPost, "/api/auth/login", `{"email":"nadie@gmail.com","password":"contraseña123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if rec.Body.String() != wrongPass {
		t.Errorf("login failures should be indistinguishable: %s vs %s", wrongPass, rec.Body.String())
	}
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/user/no-such-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Usuario no encontrado") {
		t.Errorf("not-found message missing, got: %s", rec.Body.String())
	}
}

func TestCreateApplication(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "maria@gmail.com")

	rec := env.do(t, http.MethodPost, "/api/applications?user_id="+user.ID,
		`{"visa_type":"turismo","notes":"viaje en diciembre"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Application core.VisaApplication `json:"application"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Application.Price != 1500 {
		t.Errorf("expected snapshotted price 1500, got %d", resp.Application.Price)
	}
	if resp.Application.UserEmail != user.Email {
		t.Errorf("expected snapshotted email %s, got %s", user.Email, resp.Application.UserEmail)
	}
	if resp.Application.Status != core.StatusPendiente {
		t.Errorf("expected initial status pendiente, got %s", resp.Application.Status)
	}
}

func TestCreateApplicationInvalidVisaType(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "maria@gmail.com")

	rec := env.do(t, http.MethodPost, "/api/applications?user_id="+user.ID, `{"visa_type":"estudiante"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Tipo de visa inválido") {
		t.Errorf("invalid visa type message missing, got: %s", rec.Body.String())
	}
}

func TestCreateApplicationUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/applications?user_id=no-such-user", `{"visa_type":"turismo"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestUploadDocument(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "maria@gmail.com")
	app := &core.VisaApplication{ID: "app-1", UserID: user.ID, CreatedAt: time.Now().UTC()}
	if err := env.apps.Create(context.Background(), app); err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}

	form := url.Values{}
	form.Set("file_name", "pasaporte.jpg")
	form.Set("file_type", "image/jpeg")
	form.Set("file_data", base64.StdEncoding.EncodeToString([]byte("scan")))

	rec := env.do(t, http.MethodPost, "/api/applications/app-1/documents?user_id="+user.ID,
		form.Encode(), func(r *http.Request) {
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Documento subido exitosamente") {
		t.Errorf("success message missing, got: %s", rec.Body.String())
	}

	stored, err := env.apps.GetByID(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("failed to read application: %v", err)
	}
	if len(stored.Documents) != 1 || stored.Documents[0].Name != "pasaporte.jpg" {
		t.Errorf("document not attached: %+v", stored.Documents)
	}
}

func TestUploadDocumentMissingFields(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "maria@gmail.com")
	app := &core.VisaApplication{ID: "app-1", UserID: user.ID, CreatedAt: time.Now().UTC()}
	if err := env.apps.Create(context.Background(), app); err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}

	// file_type missing
	form := url.Values{}
	form.Set("file_name", "pasaporte.jpg")
	form.Set("file_data", "aGVsbG8=")

	rec := env.do(t, http.MethodPost, "/api/applications/app-1/documents?user_id="+user.ID,
		form.Encode(), func(r *http.Request) {
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "file_type") {
		t.Errorf("missing-field message should name file_type, got: %s", rec.Body.String())
	}

	stored, err := env.apps.GetByID(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("failed to read application: %v", err)
	}
	if len(stored.Documents) != 0 {
		t.Errorf("rejected upload must not attach documents: %+v", stored.Documents)
	}
}

func TestUploadDocumentWrongOwner(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "maria@gmail.com")
	app := &core.VisaApplication{ID: "app-1", UserID: user.ID, CreatedAt: time.Now().UTC()}
	if err := env.apps.Create(context.Background(), app); err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}

	form := url.Values{}
	form.Set("file_name", "pasaporte.jpg")
	form.Set("file_type", "image/jpeg")
	form.Set("file_data", "aGVsbG8=")

	rec := env.do(t, http.MethodPost, "/api/applications/app-1/documents?user_id=otro-usuario",
		form.Encode(), func(r *http.Request) {
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No autorizado") {
		t.Errorf("forbidden message missing, got: %s", rec.Body.String())
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/applications/no-such-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Solicitud no encontrada") {
		t.Errorf("not-found message missing, got: %s", rec.Body.String())
	}
}
