package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"image-steganography-backend/audio"
	"image-steganography-backend/imaging"
	"image-steganography-backend/models"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewStegoHandler()

	api := router.Group("/api/v1")
	api.GET("/health", h.HealthCheck)
	api.POST("/stego/embed", h.EmbedPayload)
	api.POST("/stego/extract", h.ExtractPayload)
	return router
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

func postMultipart(t *testing.T, router *gin.Engine, path string, fields map[string]string, files []formFile) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", f.field, err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("write form file %s: %v", f.field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func makeCoverPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	pixels := make([]byte, w*h*4)
	for i := range pixels {
		if i%4 == 3 {
			pixels[i] = 255
		} else {
			// Even values: all LSBs zero, so a fresh cover carries no marker.
			pixels[i] = byte((i * 29) &^ 1)
		}
	}
	data, err := imaging.EncodePNG(pixels, w, h)
	if err != nil {
		t.Fatalf("build cover PNG: %v", err)
	}
	return data
}

func makeCoverWAV(t *testing.T, sampleCount int) []byte {
	t.Helper()
	pcm := make([]byte, sampleCount*2)
	for i := range pcm {
		pcm[i] = byte(i*7) &^ 1
	}
	data, err := audio.EncodeWAV(pcm, &models.CarrierMetadata{SampleRate: 44100, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("build cover WAV: %v", err)
	}
	return data
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("health body = %s", rec.Body.String())
	}
}

func TestEmbedExtract_TextThroughAPI(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverPNG(t, 64, 64)

	rec := postMultipart(t, router, "/api/v1/stego/embed",
		map[string]string{"message": "hello over http"},
		[]formFile{{"carrier_file", "cover.png", cover}})
	if rec.Code != http.StatusOK {
		t.Fatalf("embed status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("embed content type = %q", ct)
	}
	if rec.Header().Get("X-Stego-PSNR") == "" {
		t.Fatalf("missing X-Stego-PSNR header")
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "cover_stego.png") {
		t.Fatalf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	stegoImage, _ := io.ReadAll(rec.Body)
	rec = postMultipart(t, router, "/api/v1/stego/extract",
		nil,
		[]formFile{{"stego_file", "cover_stego.png", stegoImage}})
	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.ExtractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse extract response: %v", err)
	}
	if !resp.Success || resp.Kind != "text" || resp.Value != "hello over http" {
		t.Fatalf("extract response = %+v", resp)
	}
}

func TestEmbedExtract_FileThroughAPI(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverPNG(t, 64, 64)
	secret := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}

	rec := postMultipart(t, router, "/api/v1/stego/embed",
		map[string]string{"password": "pw"},
		[]formFile{
			{"carrier_file", "cover.png", cover},
			{"secret_file", "payload.bin", secret},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("embed status = %d, body = %s", rec.Code, rec.Body.String())
	}

	stegoImage, _ := io.ReadAll(rec.Body)
	rec = postMultipart(t, router, "/api/v1/stego/extract",
		map[string]string{"password": "pw"},
		[]formFile{{"stego_file", "out.png", stegoImage}})
	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "payload.bin") {
		t.Fatalf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.Equal(rec.Body.Bytes(), secret) {
		t.Fatalf("extracted file differs from secret")
	}
}

func TestEmbedExtract_WAVThroughAPI(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverWAV(t, 4000)

	rec := postMultipart(t, router, "/api/v1/stego/embed",
		map[string]string{"message": "hidden in audio"},
		[]formFile{{"carrier_file", "cover.wav", cover}})
	if rec.Code != http.StatusOK {
		t.Fatalf("embed status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("embed content type = %q", ct)
	}

	stegoWAV, _ := io.ReadAll(rec.Body)
	rec = postMultipart(t, router, "/api/v1/stego/extract",
		nil,
		[]formFile{{"stego_file", "cover_stego.wav", stegoWAV}})
	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.ExtractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse extract response: %v", err)
	}
	if resp.Value != "hidden in audio" {
		t.Fatalf("extract response = %+v", resp)
	}
}

func TestExtract_WrongPassword(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverPNG(t, 64, 64)

	rec := postMultipart(t, router, "/api/v1/stego/embed",
		map[string]string{"message": "secret", "password": "right"},
		[]formFile{{"carrier_file", "cover.png", cover}})
	if rec.Code != http.StatusOK {
		t.Fatalf("embed status = %d", rec.Code)
	}

	stegoImage, _ := io.ReadAll(rec.Body)
	rec = postMultipart(t, router, "/api/v1/stego/extract",
		map[string]string{"password": "wrong"},
		[]formFile{{"stego_file", "out.png", stegoImage}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}
}

func TestExtract_NoHiddenData(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverPNG(t, 32, 32)

	rec := postMultipart(t, router, "/api/v1/stego/extract",
		nil,
		[]formFile{{"stego_file", "clean.png", cover}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("clean image status = %d, want 404", rec.Code)
	}
}

func TestEmbed_ValidationFailures(t *testing.T) {
	router := newTestRouter()
	cover := makeCoverPNG(t, 32, 32)

	tests := []struct {
		name       string
		fields     map[string]string
		files      []formFile
		wantStatus int
	}{
		{
			name:       "missing carrier",
			fields:     map[string]string{"message": "hi"},
			files:      nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing payload",
			fields:     nil,
			files:      []formFile{{"carrier_file", "cover.png", cover}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "both message and secret file",
			fields: map[string]string{"message": "hi"},
			files: []formFile{
				{"carrier_file", "cover.png", cover},
				{"secret_file", "s.bin", []byte("x")},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported carrier format",
			fields:     map[string]string{"message": "hi"},
			files:      []formFile{{"carrier_file", "cover.tiff", cover}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "payload exceeds capacity",
			fields:     map[string]string{"message": strings.Repeat("a", 8192)},
			files:      []formFile{{"carrier_file", "cover.png", cover}},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		rec := postMultipart(t, router, "/api/v1/stego/embed", tc.fields, tc.files)
		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: status = %d, want %d (body: %s)", tc.name, rec.Code, tc.wantStatus, rec.Body.String())
		}
	}
}
