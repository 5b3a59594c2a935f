package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintboard/hintboard/internal/auth/session"
)

func pngUpload(t *testing.T, extraFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "upload.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	for key, value := range extraFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func (f *serverFixture) upload(t *testing.T, body *bytes.Buffer, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/images/compress", body)
	req.Host = "acme.localhost"
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}
	resp := httptest.NewRecorder()
	f.engine.ServeHTTP(resp, req)
	return resp
}

func TestCompressImageReturnsBase64JPEG(t *testing.T) {
	f := newServerFixture()
	body, contentType := pngUpload(t, nil)

	resp := f.upload(t, body, contentType, testMemberToken)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data         string `json:"data"`
		ContentType  string `json:"content_type"`
		Quality      int    `json:"quality"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		Bytes        int    `json:"bytes"`
		BudgetMissed bool   `json:"budget_missed"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))

	raw, err := base64.StdEncoding.DecodeString(payload.Data)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", payload.ContentType)
	assert.Equal(t, len(raw), payload.Bytes)
	assert.Equal(t, 64, payload.Width)
	assert.Equal(t, 48, payload.Height)
	assert.False(t, payload.BudgetMissed)

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, decoded.Bounds().Dx())
}

func TestCompressImageRequiresAuth(t *testing.T) {
	f := newServerFixture()
	body, contentType := pngUpload(t, nil)

	resp := f.upload(t, body, contentType, "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCompressImageMissingFileRejected(t *testing.T) {
	f := newServerFixture()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("target_bytes", "1000"))
	require.NoError(t, writer.Close())

	resp := f.upload(t, body, writer.FormDataContentType(), testMemberToken)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCompressImageGarbagePayloadRejected(t *testing.T) {
	f := newServerFixture()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image at all"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp := f.upload(t, body, writer.FormDataContentType(), testMemberToken)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCompressImageInvalidTargetRejected(t *testing.T) {
	f := newServerFixture()
	body, contentType := pngUpload(t, map[string]string{"target_bytes": "-5"})

	resp := f.upload(t, body, contentType, testMemberToken)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCompressImageTinyBudgetFlagsMiss(t *testing.T) {
	f := newServerFixture()
	body, contentType := pngUpload(t, map[string]string{"target_bytes": "1"})

	resp := f.upload(t, body, contentType, testMemberToken)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"budget_missed":true`)
}
