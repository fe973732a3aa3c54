package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var (
	adminPrincipal = auth.Principal{UserID: uuid.New(), Name: "Admin", IsAdmin: true}
	userPrincipal  = auth.Principal{UserID: uuid.New(), Name: "Cliente"}
)

func init() {
	gin.SetMode(gin.TestMode)
}

// as stores p in the request context the way the auth middleware does.
func as(p auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(t *testing.T, method, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createCategory(t *testing.T, store *memory.Store, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, store.Categories().Create(context.Background(), category))
	return category
}
