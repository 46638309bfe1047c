package handlers

import (
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"image-browser/internal/gallery"
	"image-browser/internal/startup"
	"image-browser/internal/web"

	"github.com/gorilla/mux"
)

const testGalleryTemplate = `<div class="grid">
{{#each Entries}}<a href="{{ViewURL}}"><img src="{{ThumbURL}}" alt="{{Name}}"></a>
{{/each}}</div>
<p>Page {{Page}} of {{TotalPages}} ({{TotalCount}} images)</p>
{{#if HasPrev}}<a href="{{PrevURL}}">prev</a>{{/if}}
{{#if HasNext}}<a href="{{NextURL}}">next</a>{{/if}}`

const testViewTemplate = `<h1>{{Name}}</h1>
<img src="{{ImageURL}}">
{{#if HasCaption}}<p class="caption">{{Caption}}</p>{{/if}}
{{#if HasPrev}}<a id="prev" href="{{PrevURL}}">prev</a>{{/if}}
{{#if HasNext}}<a id="next" href="{{NextURL}}">next</a>{{/if}}`

type testEnv struct {
	handlers   *Handlers
	router     *mux.Router
	imageDir   string
	cacheDir   string
	captionDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	imageDir := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	captionDir := filepath.Join(imageDir, "captions")
	if err := os.MkdirAll(captionDir, 0o755); err != nil {
		t.Fatal(err)
	}

	templateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(templateDir, "gallery.hbs"), []byte(testGalleryTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(templateDir, "view.hbs"), []byte(testViewTemplate), 0o644); err != nil {
		t.Fatal(err)
	}

	renderer, err := web.NewRenderer(templateDir)
	if err != nil {
		t.Fatalf("failed to parse test templates: %v", err)
	}

	config := &startup.Config{
		ImageDir:   imageDir,
		CacheDir:   cacheDir,
		CaptionDir: captionDir,
		SizeTiers:  gallery.DefaultSizeTiers(),
	}

	scanner := gallery.NewScanner(imageDir)
	captions := gallery.NewCaptionLoader(captionDir)
	thumbs, err := gallery.NewThumbnailCache(cacheDir, imageDir, config.SizeTiers)
	if err != nil {
		t.Fatalf("failed to create thumbnail cache: %v", err)
	}

	h := New(scanner, captions, thumbs, renderer, config)

	router := mux.NewRouter()
	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/cache/{file}", h.ServeThumbnail).Methods("GET")
	router.HandleFunc("/image/{file}", h.ServeImage).Methods("GET")
	router.HandleFunc("/delete/{file}", h.Delete).Methods("POST")
	router.HandleFunc("/view/{file}", h.View).Methods("GET")
	router.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	router.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	router.HandleFunc("/version", h.GetVersion).Methods("GET")

	return &testEnv{
		handlers:   h,
		router:     router,
		imageDir:   imageDir,
		cacheDir:   cacheDir,
		captionDir: captionDir,
	}
}

func (e *testEnv) createImage(t *testing.T, name string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	f, err := os.Create(filepath.Join(e.imageDir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("failed to encode test image %s: %v", name, err)
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndexRendersEntries(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "a.jpg", 100, 80)
	env.createImage(t, "B.png", 100, 80)
	env.createImage(t, "c.gif", 100, 80)

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	for _, name := range []string{"a.jpg", "B.png", "c.gif"} {
		if !strings.Contains(body, name) {
			t.Errorf("gallery page missing %s", name)
		}
	}
	if !strings.Contains(body, "Page 1 of 1 (3 images)") {
		t.Errorf("gallery page missing pagination line: %q", body)
	}

	// Uppercase sorts before lowercase in the listing.
	if strings.Index(body, "B.png") > strings.Index(body, "a.jpg") {
		t.Error("B.png should be listed before a.jpg")
	}

	// Thumbnails for the default (medium) tier must now exist in the cache.
	entries, err := os.ReadDir(env.cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("cache has %d entries after render, want 3", len(entries))
	}
}

func TestIndexEmptyGallery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Page 1 of 1 (0 images)") {
		t.Errorf("empty gallery should render page 1 of 1: %q", rec.Body.String())
	}
}

func TestIndexPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		env.createImage(t, string(rune('a'+i))+".jpg", 40, 30)
	}

	// Invalid page_size coerces to the default of 12.
	rec := env.get(t, "/?page_size=7")
	body := rec.Body.String()
	if got := strings.Count(body, "/view/"); got != 12 {
		t.Errorf("page 1 has %d entries, want 12", got)
	}
	if !strings.Contains(body, "Page 1 of 2") {
		t.Errorf("expected page 1 of 2: %q", body)
	}

	rec = env.get(t, "/?page=2&page_size=7")
	body = rec.Body.String()
	if got := strings.Count(body, "/view/"); got != 3 {
		t.Errorf("page 2 has %d entries, want 3", got)
	}

	// Out-of-range pages clamp instead of failing.
	rec = env.get(t, "/?page=99&page_size=7")
	if !strings.Contains(rec.Body.String(), "Page 2 of 2") {
		t.Errorf("page 99 should clamp to page 2: %q", rec.Body.String())
	}

	// "all" renders everything on one page.
	rec = env.get(t, "/?page=5&page_size=all")
	body = rec.Body.String()
	if got := strings.Count(body, "/view/"); got != 15 {
		t.Errorf("all mode has %d entries, want 15", got)
	}
	if !strings.Contains(body, "Page 1 of 1") {
		t.Errorf("all mode should be page 1 of 1: %q", body)
	}
}

func TestIndexThumbnailFallback(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.imageDir, "broken.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `src="/image/broken.jpg"`) {
		t.Errorf("broken image should fall back to the original URL: %q", rec.Body.String())
	}
}

func TestIndexRendersCaptions(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "sunset.jpg", 60, 40)
	if err := os.WriteFile(filepath.Join(env.captionDir, "sunset.txt"), []byte("Golden hour\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := env.get(t, "/view/sunset.jpg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Golden hour") {
		t.Errorf("view page missing caption: %q", rec.Body.String())
	}
}

func TestServeImage(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "cat.jpg", 60, 40)

	rec := env.get(t, "/image/cat.jpg")
	if rec.Code != http.StatusOK {
		t.Errorf("existing image: status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = env.get(t, "/image/missing.jpg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing image: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeImageRejectsTraversal(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/image/x", nil)
	req = mux.SetURLVars(req, map[string]string{"file": "../secret.txt"})
	rec := httptest.NewRecorder()
	env.handlers.ServeImage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("traversal name: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeThumbnail(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "cat.jpg", 300, 200)

	// A gallery render populates the cache.
	env.get(t, "/")

	name := gallery.CacheName("cat.jpg", gallery.TierMedium)
	rec := env.get(t, "/cache/"+name)
	if rec.Code != http.StatusOK {
		t.Fatalf("cached thumbnail: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age") {
		t.Errorf("Cache-Control = %q, want a max-age directive", cc)
	}

	rec = env.get(t, "/cache/nope_small_00000000.jpg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("absent thumbnail: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeThumbnailHidesTempFiles(t *testing.T) {
	env := newTestEnv(t)

	// An in-flight generation writes to a dot-prefixed temp file before
	// renaming; it must not be reachable even while it exists.
	if err := os.WriteFile(filepath.Join(env.cacheDir, ".thumb-12345"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/cache/x", nil)
	req = mux.SetURLVars(req, map[string]string{"file": ".thumb-12345"})
	rec := httptest.NewRecorder()
	env.handlers.ServeThumbnail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("temp file: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "cat.jpg", 300, 200)

	// Populate all tiers so deletion has cache entries to remove.
	for _, size := range []string{"small", "medium", "large"} {
		env.get(t, "/?size="+size)
	}
	entries, _ := os.ReadDir(env.cacheDir)
	if len(entries) != 3 {
		t.Fatalf("cache has %d entries before delete, want 3", len(entries))
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/delete/cat.jpg", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	if _, err := os.Stat(filepath.Join(env.imageDir, "cat.jpg")); !os.IsNotExist(err) {
		t.Error("source file should be removed")
	}
	entries, _ = os.ReadDir(env.cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache has %d entries after delete, want 0", len(entries))
	}

	// Deleting again is not-found, with no side effects.
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/delete/cat.jpg", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/delete/x", nil)
	req = mux.SetURLVars(req, map[string]string{"file": ".."})
	rec := httptest.NewRecorder()
	env.handlers.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("traversal name: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestViewNavigation(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "a.jpg", 60, 40)
	env.createImage(t, "b.jpg", 60, 40)
	env.createImage(t, "c.jpg", 60, 40)

	rec := env.get(t, "/view/b.jpg?size=large&page_size=50")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "/view/a.jpg") {
		t.Error("view page missing prev link to a.jpg")
	}
	if !strings.Contains(body, "/view/c.jpg") {
		t.Error("view page missing next link to c.jpg")
	}
	// size and page_size pass through to the navigation links.
	if !strings.Contains(body, "size=large") || !strings.Contains(body, "page_size=50") {
		t.Errorf("navigation links should carry size and page_size: %q", body)
	}
}

func TestViewEdges(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "a.jpg", 60, 40)
	env.createImage(t, "b.jpg", 60, 40)

	body := env.get(t, "/view/a.jpg").Body.String()
	if strings.Contains(body, `id="prev"`) {
		t.Error("first image should have no prev link")
	}
	if !strings.Contains(body, `id="next"`) {
		t.Error("first image should have a next link")
	}

	body = env.get(t, "/view/b.jpg").Body.String()
	if !strings.Contains(body, `id="prev"`) {
		t.Error("last image should have a prev link")
	}
	if strings.Contains(body, `id="next"`) {
		t.Error("last image should have no next link")
	}
}

func TestViewNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "a.jpg", 60, 40)

	rec := env.get(t, "/view/missing.jpg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// A caption sidecar is not a gallery image.
	rec = env.get(t, "/view/a.txt")
	if rec.Code != http.StatusNotFound {
		t.Errorf("non-image name: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.createImage(t, "a.jpg", 60, 40)

	rec := env.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d, want %d", rec.Code, http.StatusOK)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("healthz: invalid JSON: %v", err)
	}
	if health.Status != statusHealthy {
		t.Errorf("healthz status = %q, want %q", health.Status, statusHealthy)
	}
	if health.TotalImages != 1 {
		t.Errorf("healthz totalImages = %d, want 1", health.TotalImages)
	}

	for _, path := range []string{"/livez", "/readyz", "/version"} {
		rec := env.get(t, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %q, want application/json", path, ct)
		}
	}
}

func TestValidFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cat.jpg", true},
		{"with space.png", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../etc/passwd", false},
		{"a/b.jpg", false},
		{`a\b.jpg`, false},
	}

	for _, tt := range tests {
		if got := validFilename(tt.name); got != tt.want {
			t.Errorf("validFilename(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
