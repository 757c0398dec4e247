package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shop-backend/internal/auth"
	"shop-backend/internal/models"
)

type testEnv struct {
	router   http.Handler
	tokens   *auth.Manager
	products *fakeProductRepo
	orders   *fakeOrderRepo
	users    *fakeUserRepo
	configs  *fakeConfigRepo
	blobs    *fakeBlobStore
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		tokens:   tokens,
		products: newFakeProductRepo(),
		orders:   newFakeOrderRepo(),
		users:    newFakeUserRepo(),
		configs:  newFakeConfigRepo(map[string]string{"store_name": "Chic Charms", "currency": "USD"}),
		blobs:    &fakeBlobStore{},
	}

	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	admin := models.User{Username: "admin", Email: "admin@example.com", PasswordHash: hash}
	require.NoError(t, env.users.Create(context.Background(), &admin))

	env.token, err = tokens.Issue(&admin)
	require.NoError(t, err)

	env.router = NewRouter(
		tokens,
		NewAuthHandler(env.users, tokens),
		NewProductHandler(env.products, env.blobs),
		NewOrderHandler(env.orders),
		NewUserHandler(env.users),
		NewConfigHandler(env.configs, fakeStatusRepo{}),
		t.TempDir(),
		"/static/uploads",
	)

	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path string, payload any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return env.do(t, method, path, body, "application/json", authed)
}

// productFormBody builds the multipart payload the catalog routes consume:
// scalar form values plus zero or more fake image files.
func productFormBody(t *testing.T, fields map[string]string, imageNames []string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range imageNames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func itoa(i int) string { return strconv.Itoa(i) }

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
