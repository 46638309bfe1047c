package gallery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
}

func TestListImagesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "B.png", "c.gif", "notes.txt", "photo.JPEG", "clip.mp4"} {
		writeFile(t, dir, name)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	got := NewScanner(dir).ListImages()

	// Case-sensitive lexicographic order: uppercase sorts before lowercase.
	want := []string{"B.png", "a.jpg", "c.gif", "photo.JPEG"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListImages() = %v, want %v", got, want)
	}
}

func TestListImagesUppercaseSortsFirst(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "B.png", "c.gif"} {
		writeFile(t, dir, name)
	}

	got := NewScanner(dir).ListImages()
	want := []string{"B.png", "a.jpg", "c.gif"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListImages() = %v, want %v", got, want)
	}
}

func TestListImagesMissingDirectory(t *testing.T) {
	s := NewScanner(filepath.Join(t.TempDir(), "does-not-exist"))
	if got := s.ListImages(); len(got) != 0 {
		t.Errorf("ListImages() on missing directory = %v, want empty", got)
	}
}

func TestListImagesEmptyDirectory(t *testing.T) {
	s := NewScanner(t.TempDir())
	if got := s.ListImages(); len(got) != 0 {
		t.Errorf("ListImages() on empty directory = %v, want empty", got)
	}
}

func TestListImagesRescansEveryCall(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(dir)

	if got := s.ListImages(); len(got) != 0 {
		t.Fatalf("Expected empty listing, got %v", got)
	}

	writeFile(t, dir, "new.jpg")
	got := s.ListImages()
	if len(got) != 1 || got[0] != "new.jpg" {
		t.Errorf("ListImages() after adding file = %v, want [new.jpg]", got)
	}
}

func TestContains(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	s := NewScanner(dir)

	if !s.Contains("a.jpg") {
		t.Error("Expected Contains(a.jpg) to be true")
	}
	if s.Contains("b.jpg") {
		t.Error("Expected Contains(b.jpg) to be false")
	}
}

func TestNeighbors(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		writeFile(t, dir, name)
	}
	s := NewScanner(dir)

	tests := []struct {
		name     string
		prev     string
		next     string
		ok       bool
	}{
		{"a.jpg", "", "b.jpg", true},
		{"b.jpg", "a.jpg", "c.jpg", true},
		{"c.jpg", "b.jpg", "", true},
		{"missing.jpg", "", "", false},
	}

	for _, tt := range tests {
		prev, next, ok := s.Neighbors(tt.name)
		if prev != tt.prev || next != tt.next || ok != tt.ok {
			t.Errorf("Neighbors(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.name, prev, next, ok, tt.prev, tt.next, tt.ok)
		}
	}
}
