package limeblog

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartWithImage(t *testing.T, fields map[string]string, filename, mimeType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write image data: %v", err)
	}
	w.Close()
	return &body, w.FormDataContentType()
}

func TestImageStoreSave(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, 5<<20)

	data := pngBytes(t, 10, 10)
	body, contentType := multipartWithImage(t, nil, "desenho.png", "image/png", data)
	upload := parseUpload(t, body, contentType)

	imageURL, thumbURL, err := s.Save("sketches", upload)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(imageURL, "/uploads/sketches/") {
		t.Errorf("imageURL = %q, want per-category path", imageURL)
	}
	if !strings.HasSuffix(imageURL, ".png") {
		t.Errorf("extension should come from the MIME type, got %q", imageURL)
	}
	if strings.Contains(imageURL, "desenho") {
		t.Errorf("client filename must not leak into the stored name: %q", imageURL)
	}

	onDisk := filepath.Join(dir, strings.TrimPrefix(imageURL, "/uploads/"))
	if _, err := os.Stat(onDisk); err != nil {
		t.Errorf("stored image missing on disk: %v", err)
	}

	if thumbURL == "" {
		t.Fatal("png upload should produce a thumbnail")
	}
	thumbOnDisk := filepath.Join(dir, strings.TrimPrefix(thumbURL, "/uploads/"))
	if _, err := os.Stat(thumbOnDisk); err != nil {
		t.Errorf("thumbnail missing on disk: %v", err)
	}
}

func TestImageStoreResizesWideImages(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, 5<<20)

	data := pngBytes(t, 1200, 600)
	body, contentType := multipartWithImage(t, nil, "grande.png", "image/png", data)
	_, thumbURL, err := s.Save("photographs", parseUpload(t, body, contentType))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, strings.TrimPrefix(thumbURL, "/uploads/")))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != thumbMaxWidth {
		t.Errorf("thumbnail width = %d, want %d", cfg.Width, thumbMaxWidth)
	}
}

func TestImageStoreRejectsBadMIME(t *testing.T) {
	s := NewImageStore(t.TempDir(), 5<<20)

	body, contentType := multipartWithImage(t, nil, "nota.txt", "text/plain", []byte("hello"))
	_, _, err := s.Save("sketches", parseUpload(t, body, contentType))
	if !errors.Is(err, ErrImageType) {
		t.Fatalf("expected ErrImageType, got %v", err)
	}
}

func TestImageStoreRejectsOversized(t *testing.T) {
	s := NewImageStore(t.TempDir(), 64)

	data := pngBytes(t, 50, 50)
	body, contentType := multipartWithImage(t, nil, "big.png", "image/png", data)
	_, _, err := s.Save("sketches", parseUpload(t, body, contentType))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

// parseUpload turns a multipart body into the FileHeader a handler would see.
func parseUpload(t *testing.T, body *bytes.Buffer, contentType string) *multipart.FileHeader {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	_, header, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	return header
}

func TestCreatePostWithUpload(t *testing.T) {
	a := newTestApp(t, testAdminKey)

	fields := validFields()
	fields["category"] = "photographs"
	body, contentType := multipartWithImage(t, fields, "foto.png", "image/png", pngBytes(t, 20, 20))

	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(AdminKeyHeader, testAdminKey)
	rec := doRequest(a, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created Post
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(created.ImageURL, "/uploads/photographs/") {
		t.Errorf("imageUrl = %q, want upload-area path", created.ImageURL)
	}
	if created.ThumbnailURL == "" {
		t.Error("png upload should produce a thumbnail url")
	}
}

func TestCreatePostWithDisallowedUploadType(t *testing.T) {
	a := newTestApp(t, testAdminKey)

	body, contentType := multipartWithImage(t, validFields(), "doc.pdf", "application/pdf", []byte("%PDF-"))
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(AdminKeyHeader, testAdminKey)
	rec := doRequest(a, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if posts, _ := a.repo.All(); len(posts) != 0 {
		t.Error("rejected upload must not persist a record")
	}
}
