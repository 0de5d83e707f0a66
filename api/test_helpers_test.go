package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := slogging.Initialize(slogging.Config{Level: slogging.LogLevelError, Output: io.Discard}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// CreateTestGinContext creates a Gin context for testing with the given HTTP method and path
func CreateTestGinContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

// CreateTestGinContextWithBody creates a Gin context with a request body
func CreateTestGinContextWithBody(method, path, contentType string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, w
}

// AssertJSONErrorResponse verifies the response is a JSON error with expected status and message
func AssertJSONErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMsg string) ErrorResponse {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "HTTP status should match")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	assert.Equal(t, expectedStatus, resp.Status)
	if expectedMsg != "" {
		assert.Equal(t, expectedMsg, resp.Msg)
	}
	return resp
}

// mustDecode decodes a JSON document or fails the test
func mustDecode(t *testing.T, doc string) *Value {
	t.Helper()
	v, err := DecodePayload([]byte(doc))
	require.NoError(t, err)
	return v
}

func strPtr(s string) *string { return &s }

// seededFields mirrors the starter definitions stored by the seed command
func seededFields() []Field {
	return []Field{
		{ID: 1, Name: "firstName", Type: "text", Required: true, Fields: []int64{}},
		{ID: 2, Name: "lastName", Type: "text", Required: true, Fields: []int64{}},
		{ID: 3, Name: "dob", Type: "date", Required: true, Fields: []int64{}},
		{ID: 4, Name: "email", Type: "email", Pattern: strPtr(`[a-z0-9.]+@[a-z0-9.]+.com`), Fields: []int64{}},
		{ID: 5, Name: "emergencyContact", Type: "group", Fields: []int64{1, 2, 4}},
	}
}

// =============================================================================
// Mock stores
// =============================================================================

// mockFieldStore is an in-memory FieldStore with per-operation error injection
type mockFieldStore struct {
	mu     sync.Mutex
	fields map[int64]Field
	nextID int64

	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	findErr   error

	findCalls int
}

func newMockFieldStore(initial ...Field) *mockFieldStore {
	m := &mockFieldStore{fields: make(map[int64]Field), nextID: 1}
	for _, f := range initial {
		m.fields[f.ID] = f
		if f.ID >= m.nextID {
			m.nextID = f.ID + 1
		}
	}
	return m
}

func (m *mockFieldStore) List(_ context.Context) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Field, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockFieldStore) Get(_ context.Context, id int64) (*Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	f, ok := m.fields[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *mockFieldStore) Create(_ context.Context, field *Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.fields {
		if existing.Name == field.Name {
			return ErrDuplicateField
		}
	}
	field.ID = m.nextID
	m.nextID++
	m.fields[field.ID] = *field
	return nil
}

func (m *mockFieldStore) Update(_ context.Context, id int64, field *Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.fields[id]; !ok {
		return ErrFieldNotFound
	}
	for otherID, existing := range m.fields {
		if otherID != id && existing.Name == field.Name {
			return ErrDuplicateField
		}
	}
	field.ID = id
	m.fields[id] = *field
	return nil
}

func (m *mockFieldStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.fields, id)
	return nil
}

func (m *mockFieldStore) FindByNames(_ context.Context, names []string) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := []Field{}
	for _, f := range m.fields {
		if wanted[f.Name] {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockFormStore is an in-memory FormStore with per-operation error injection
type mockFormStore struct {
	mu      sync.Mutex
	rows    map[string][]FormRecord
	batches int

	createErr error
	listErr   error
}

func newMockFormStore() *mockFormStore {
	return &mockFormStore{rows: make(map[string][]FormRecord)}
}

func (m *mockFormStore) CreateBatch(_ context.Context, rows []FormRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.batches++
	for _, r := range rows {
		m.rows[r.FormID] = append(m.rows[r.FormID], r)
	}
	return nil
}

func (m *mockFormStore) ListByFormID(_ context.Context, formID string) ([]FormRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]FormRecord(nil), m.rows[formID]...), nil
}

// fixedIDs hands out predetermined form ids
type fixedIDs struct {
	ids []string
	err error
}

func (f *fixedIDs) NewID() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

// newTestRouter builds a router with every route registered
func newTestRouter(fields FieldStore, forms FormStore, ids *fixedIDs) *gin.Engine {
	server := NewServer(
		NewFieldService(fields, nil),
		NewFormService(fields, forms, ids, nil),
		ServerConfig{MaxBodyBytes: 1 << 16},
	)
	r := gin.New()
	server.RegisterRoutes(r)
	return r
}

// serve runs one request through router
func serve(router http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
