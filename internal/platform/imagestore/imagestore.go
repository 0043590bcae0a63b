// Package imagestore provides label-keyed image storage for report sections.
// Section admin screens upload images under a (folder, label) pair, for
// example folder "digestive" and label "gut-icon"; the report viewer resolves them
// back to URLs. The package defines the Store interface, an in-memory
// implementation for tests and development, a disk-backed implementation,
// and Echo HTTP handlers implementing the upload/list/delete contract.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrMissingLabel  = errors.New("image label is required")
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")
)

// MaxImageSize is the maximum allowed upload size in bytes (10 MB).
const MaxImageSize = 10 * 1024 * 1024

// Image describes one stored image.
type Image struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Store defines the contract for image storage backends.
type Store interface {
	Put(ctx context.Context, folder, label string, content io.Reader) (*Image, error)
	List(ctx context.Context, folder string) ([]Image, error)
	Delete(ctx context.Context, folder, label string) error
}

var labelSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeLabel keeps labels filesystem- and URL-safe.
func sanitizeLabel(label string) string {
	return labelSanitizer.ReplaceAllString(strings.TrimSpace(label), "-")
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	folders map[string]map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		folders: make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, folder, label string, content io.Reader) (*Image, error) {
	label = sanitizeLabel(label)
	if label == "" {
		return nil, ErrMissingLabel
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	s.mu.Lock()
	if s.folders[folder] == nil {
		s.folders[folder] = make(map[string][]byte)
	}
	s.folders[folder][label] = data
	s.mu.Unlock()

	return &Image{Label: label, URL: s.url(folder, label)}, nil
}

func (s *MemoryStore) List(_ context.Context, folder string) ([]Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]Image, 0, len(s.folders[folder]))
	for label := range s.folders[folder] {
		images = append(images, Image{Label: label, URL: s.url(folder, label)})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Label < images[j].Label })
	return images, nil
}

func (s *MemoryStore) Delete(_ context.Context, folder, label string) error {
	label = sanitizeLabel(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.folders[folder][label]; !ok {
		return ErrImageNotFound
	}
	delete(s.folders[folder], label)
	return nil
}

// Open returns the stored bytes; used by tests and the dev download path.
func (s *MemoryStore) Open(folder, label string) (io.Reader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.folders[folder][sanitizeLabel(label)]
	if !ok {
		return nil, ErrImageNotFound
	}
	return bytes.NewReader(data), nil
}

func (s *MemoryStore) url(folder, label string) string {
	return s.baseURL + "/" + folder + "/" + label
}

// ---------------------------------------------------------------------------
// Disk implementation
// ---------------------------------------------------------------------------

// DiskStore stores images under dir/<folder>/<label> and serves URLs below
// baseURL. Folder names are sanitized the same way labels are.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *DiskStore) Put(_ context.Context, folder, label string, content io.Reader) (*Image, error) {
	folder = sanitizeLabel(folder)
	label = sanitizeLabel(label)
	if label == "" {
		return nil, ErrMissingLabel
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	if err := os.MkdirAll(filepath.Join(s.dir, folder), 0o755); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, folder, label), data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	return &Image{Label: label, URL: s.baseURL + "/" + folder + "/" + label}, nil
}

func (s *DiskStore) List(_ context.Context, folder string) ([]Image, error) {
	folder = sanitizeLabel(folder)
	entries, err := os.ReadDir(filepath.Join(s.dir, folder))
	if err != nil {
		if os.IsNotExist(err) {
			return []Image{}, nil
		}
		return nil, fmt.Errorf("read folder: %w", err)
	}

	images := make([]Image, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		images = append(images, Image{
			Label: entry.Name(),
			URL:   s.baseURL + "/" + folder + "/" + entry.Name(),
		})
	}
	return images, nil
}

func (s *DiskStore) Delete(_ context.Context, folder, label string) error {
	folder = sanitizeLabel(folder)
	label = sanitizeLabel(label)

	err := os.Remove(filepath.Join(s.dir, folder, label))
	if os.IsNotExist(err) {
		return ErrImageNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// HTTP handler
// ---------------------------------------------------------------------------

// Handler provides Echo HTTP handlers for report image operations.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts image routes on the supplied Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/report-images", h.Upload)
	g.GET("/report-images", h.List)
	g.DELETE("/report-images", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": "file is required"})
	}

	label := c.FormValue("label")
	if label == "" {
		label = file.Filename
	}
	folder := c.FormValue("folder")
	if folder == "" {
		folder = "general"
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "failed to open uploaded file"})
	}
	defer src.Close()

	img, err := h.store.Put(c.Request().Context(), folder, label, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrImageTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{"success": false, "error": err.Error()})
		case errors.Is(err, ErrMissingLabel):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "url": img.URL, "label": img.Label})
}

func (h *Handler) List(c echo.Context) error {
	folder := c.QueryParam("folder")
	if folder == "" {
		folder = "general"
	}

	images, err := h.store.List(c.Request().Context(), folder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "images": images})
}

func (h *Handler) Delete(c echo.Context) error {
	label := c.QueryParam("label")
	if label == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": "label is required"})
	}
	folder := c.QueryParam("folder")
	if folder == "" {
		folder = "general"
	}

	if err := h.store.Delete(c.Request().Context(), folder, label); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"success": false, "error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
