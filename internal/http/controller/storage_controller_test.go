package controller_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/http/controller"
	"github.com/iyhunko/storefront-backoffice/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, img storage.Image) (string, error) {
	body, _ := io.ReadAll(img.Body)
	args := m.Called(img.FileName, img.ContentType, string(body))
	return args.String(0), args.Error(1)
}

func storageRouter(uploader controller.ImageUploader, principal auth.Principal) *gin.Engine {
	ctr := controller.NewStorageController(uploader)
	router := gin.New()
	router.POST("/api/storage", as(principal), ctr.Upload)
	return router
}

func uploadRequest(t *testing.T, fileName, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/storage", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestStorageController_Upload(t *testing.T) {
	t.Run("returns the public url", func(t *testing.T) {
		// given
		uploader := new(MockUploader)
		uploader.On("UploadImage", "anel.png", "image/png", "png-bytes").
			Return("https://cdn.example.com/products/abc.png", nil)

		// when
		w := serve(storageRouter(uploader, adminPrincipal), uploadRequest(t, "anel.png", "image/png", "png-bytes"))

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"url":"https://cdn.example.com/products/abc.png"}`, w.Body.String())
		uploader.AssertExpectations(t)
	})

	t.Run("rejected content type", func(t *testing.T) {
		uploader := new(MockUploader)
		uploader.On("UploadImage", "notes.txt", "text/plain", "hello").
			Return("", apperror.Validation("file", "only image uploads are allowed"))

		w := serve(storageRouter(uploader, adminPrincipal), uploadRequest(t, "notes.txt", "text/plain", "hello"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		uploader := new(MockUploader)

		w := serve(storageRouter(uploader, adminPrincipal), formRequest(t, http.MethodPost, "/api/storage", map[string]string{"other": "x"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uploader.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-admin never reaches storage", func(t *testing.T) {
		uploader := new(MockUploader)

		w := serve(storageRouter(uploader, userPrincipal), uploadRequest(t, "anel.png", "image/png", "png-bytes"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		uploader.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything)
	})
}
