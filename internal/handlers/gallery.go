package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"image-browser/internal/gallery"
	"image-browser/internal/logging"
	"image-browser/internal/metrics"
	"image-browser/internal/workers"

	"github.com/gorilla/mux"
)

// thumbnailWorkerLimit caps the thumbnail goroutines spawned per page
// render. One page asks for at most 250 thumbnails; most resolutions are
// cache hits, so a small pool is enough.
const thumbnailWorkerLimit = 16

// GalleryEntry is one image cell in the rendered gallery grid.
type GalleryEntry struct {
	Name       string
	ThumbURL   string
	ImageURL   string
	ViewURL    string
	Caption    string
	HasCaption bool
}

// Option is one selectable value in the size or page-size picker.
type Option struct {
	Value    string
	URL      string
	Selected bool
}

// GalleryContext is the template context for the gallery page.
type GalleryContext struct {
	Entries    []GalleryEntry
	Page       int
	TotalPages int
	TotalCount int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	Size       string
	PageSize   string

	SizeOptions     []Option
	PageSizeOptions []Option
}

// ViewContext is the template context for the single-image viewer.
type ViewContext struct {
	Name       string
	ImageURL   string
	DeleteURL  string
	Caption    string
	HasCaption bool
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	BackURL    string
}

// Index renders the paginated gallery grid. Invalid query parameters are
// coerced to their defaults, never rejected.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tier := gallery.ParseSizeTier(query.Get("size"))
	pageSize := gallery.ParsePageSize(query.Get("page_size"))

	pageNumber := 1
	if n, err := strconv.Atoi(query.Get("page")); err == nil {
		pageNumber = n
	}

	files := h.scanner.ListImages()
	page := gallery.Paginate(files, pageNumber, pageSize)
	metrics.GalleryImagesTotal.Set(float64(page.TotalCount))

	ctx := GalleryContext{
		Entries:    h.resolveEntries(page.Files, tier, pageSize),
		Page:       page.Number,
		TotalPages: page.TotalPages,
		TotalCount: page.TotalCount,
		HasPrev:    page.Number > 1,
		HasNext:    page.Number < page.TotalPages,
		Size:       string(tier),
		PageSize:   pageSize.String(),
	}
	if ctx.HasPrev {
		ctx.PrevURL = galleryURL(page.Number-1, tier, pageSize)
	}
	if ctx.HasNext {
		ctx.NextURL = galleryURL(page.Number+1, tier, pageSize)
	}
	for _, t := range gallery.Tiers {
		ctx.SizeOptions = append(ctx.SizeOptions, Option{
			Value:    string(t),
			URL:      galleryURL(1, t, pageSize),
			Selected: t == tier,
		})
	}
	for _, token := range []string{"12", "25", "50", "100", "250", "all"} {
		ctx.PageSizeOptions = append(ctx.PageSizeOptions, Option{
			Value:    token,
			URL:      galleryURL(1, tier, gallery.ParsePageSize(token)),
			Selected: token == pageSize.String(),
		})
	}

	html, err := h.renderer.RenderGallery(ctx)
	if err != nil {
		logging.Error("failed to render gallery page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// View renders the single-image viewer with prev/next navigation computed
// from the current sorted listing.
func (h *Handlers) View(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if !validFilename(name) || !h.scanner.Contains(name) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	tier := gallery.ParseSizeTier(query.Get("size"))
	pageSize := gallery.ParsePageSize(query.Get("page_size"))

	prev, next, _ := h.scanner.Neighbors(name)

	ctx := ViewContext{
		Name:      name,
		ImageURL:  "/image/" + url.PathEscape(name),
		DeleteURL: "/delete/" + url.PathEscape(name),
		HasPrev:   prev != "",
		HasNext:   next != "",
		BackURL:   galleryURL(1, tier, pageSize),
	}
	if caption, ok := h.captions.Load(name); ok {
		ctx.Caption = caption
		ctx.HasCaption = true
	}
	if prev != "" {
		ctx.PrevURL = viewURL(prev, tier, pageSize)
	}
	if next != "" {
		ctx.NextURL = viewURL(next, tier, pageSize)
	}

	html, err := h.renderer.RenderView(ctx)
	if err != nil {
		logging.Error("failed to render view page for %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// resolveEntries builds the gallery entries for one page, resolving
// thumbnails in parallel. A failed resolution falls back to the original
// image URL so the page still renders.
func (h *Handlers) resolveEntries(files []string, tier gallery.SizeTier, pageSize gallery.PageSize) []GalleryEntry {
	entries := make([]GalleryEntry, len(files))

	sem := make(chan struct{}, workers.ForIO(thumbnailWorkerLimit))
	var wg sync.WaitGroup
	for i, name := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			entries[i] = h.buildEntry(name, tier, pageSize)
		}(i, name)
	}
	wg.Wait()

	return entries
}

func (h *Handlers) buildEntry(name string, tier gallery.SizeTier, pageSize gallery.PageSize) GalleryEntry {
	entry := GalleryEntry{
		Name:     name,
		ImageURL: "/image/" + url.PathEscape(name),
		ViewURL:  viewURL(name, tier, pageSize),
	}

	if caption, ok := h.captions.Load(name); ok {
		entry.Caption = caption
		entry.HasCaption = true
	}

	if _, err := h.thumbs.Resolve(name, tier); err != nil {
		logging.Warn("thumbnail resolution failed for %s (%s), serving original: %v", name, tier, err)
		entry.ThumbURL = entry.ImageURL
		return entry
	}
	entry.ThumbURL = "/cache/" + url.PathEscape(gallery.CacheName(name, tier))

	return entry
}

func galleryQuery(tier gallery.SizeTier, pageSize gallery.PageSize) url.Values {
	return url.Values{
		"size":      []string{string(tier)},
		"page_size": []string{pageSize.String()},
	}
}

func galleryURL(page int, tier gallery.SizeTier, pageSize gallery.PageSize) string {
	values := galleryQuery(tier, pageSize)
	values.Set("page", strconv.Itoa(page))
	return "/?" + values.Encode()
}

func viewURL(name string, tier gallery.SizeTier, pageSize gallery.PageSize) string {
	return "/view/" + url.PathEscape(name) + "?" + galleryQuery(tier, pageSize).Encode()
}
