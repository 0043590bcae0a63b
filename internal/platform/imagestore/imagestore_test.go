package imagestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMemoryStorePutAndList(t *testing.T) {
	store := NewMemoryStore("/api/report-images")
	ctx := context.Background()

	img, err := store.Put(ctx, "digestive", "gut-icon.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if img.Label != "gut-icon.png" {
		t.Errorf("label = %q, want gut-icon.png", img.Label)
	}
	if img.URL != "/api/report-images/digestive/gut-icon.png" {
		t.Errorf("url = %q", img.URL)
	}

	images, err := store.List(ctx, "digestive")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("List() returned %d images, want 1", len(images))
	}

	// Other folders stay empty.
	images, err = store.List(ctx, "metabolic")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 0 {
		t.Errorf("List(metabolic) returned %d images, want 0", len(images))
	}
}

func TestMemoryStorePutOverwritesSameLabel(t *testing.T) {
	store := NewMemoryStore("/img")
	ctx := context.Background()

	if _, err := store.Put(ctx, "f", "a", strings.NewReader("one")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Put(ctx, "f", "a", strings.NewReader("two")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	r, err := store.Open("f", "a")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(r)
	if string(data) != "two" {
		t.Errorf("stored content = %q, want two", data)
	}

	images, _ := store.List(ctx, "f")
	if len(images) != 1 {
		t.Errorf("List() returned %d images after overwrite, want 1", len(images))
	}
}

func TestMemoryStorePutSanitizesLabel(t *testing.T) {
	store := NewMemoryStore("/img")

	img, err := store.Put(context.Background(), "f", "../etc/passwd veo", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if strings.ContainsAny(img.Label, "/ ") {
		t.Errorf("label %q not sanitized", img.Label)
	}
}

func TestMemoryStoreRejectsEmptyLabel(t *testing.T) {
	store := NewMemoryStore("/img")
	if _, err := store.Put(context.Background(), "f", "   ", strings.NewReader("x")); !errors.Is(err, ErrMissingLabel) {
		t.Errorf("Put() error = %v, want ErrMissingLabel", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore("/img")
	ctx := context.Background()

	if _, err := store.Put(ctx, "f", "a", strings.NewReader("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "f", "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "f", "a"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("second Delete() error = %v, want ErrImageNotFound", err)
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/api/report-images")
	ctx := context.Background()

	img, err := store.Put(ctx, "sleep", "moon.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if img.URL != "/api/report-images/sleep/moon.png" {
		t.Errorf("url = %q", img.URL)
	}

	images, err := store.List(ctx, "sleep")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 1 || images[0].Label != "moon.png" {
		t.Fatalf("List() = %+v", images)
	}

	if err := store.Delete(ctx, "sleep", "moon.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "sleep", "moon.png"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Delete() after delete error = %v, want ErrImageNotFound", err)
	}
}

func TestDiskStoreListMissingFolder(t *testing.T) {
	store := NewDiskStore(filepath.Join(t.TempDir(), "nope"), "/img")
	images, err := store.List(context.Background(), "absent")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 0 {
		t.Errorf("List() returned %d images, want 0", len(images))
	}
}

func multipartUpload(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (*http.Request, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s): %v", k, err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write([]byte(fileContent)); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/report-images", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, w.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore("/api/report-images")
	h := NewHandler(store)

	req, _ := multipartUpload(t, map[string]string{"label": "brain", "folder": "genomic"}, "file", "brain.png", "data")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"success":true`) || !strings.Contains(body, `"label":"brain"`) {
		t.Errorf("unexpected body: %s", body)
	}

	images, _ := store.List(context.Background(), "genomic")
	if len(images) != 1 {
		t.Errorf("store has %d images, want 1", len(images))
	}
}

func TestHandlerUploadDefaultsLabelToFilename(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewMemoryStore("/img"))

	req, _ := multipartUpload(t, map[string]string{}, "file", "fallback.png", "data")
	rec := httptest.NewRecorder()

	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"label":"fallback.png"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandlerUploadMissingFile(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewMemoryStore("/img"))

	req, _ := multipartUpload(t, map[string]string{"label": "x"}, "", "", "")
	rec := httptest.NewRecorder()

	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerListAndDelete(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore("/img")
	h := NewHandler(store)
	ctx := context.Background()

	if _, err := store.Put(ctx, "cardiac", "heart", strings.NewReader("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/report-images?folder=cardiac", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"label":"heart"`) {
		t.Errorf("list body = %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/report-images?folder=cardiac&label=heart", nil)
	rec = httptest.NewRecorder()
	if err := h.Delete(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}

	images, _ := store.List(ctx, "cardiac")
	if len(images) != 0 {
		t.Errorf("store still has %d images", len(images))
	}
}

func TestHandlerDeleteRequiresLabel(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewMemoryStore("/img"))

	req := httptest.NewRequest(http.MethodDelete, "/api/report-images", nil)
	rec := httptest.NewRecorder()
	if err := h.Delete(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
