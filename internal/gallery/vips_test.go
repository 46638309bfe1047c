package gallery

import "testing"

func TestLoadImageWithVipsUnavailable(t *testing.T) {
	if IsVipsAvailable() {
		t.Skip("libvips initialized in this process")
	}
	if _, err := LoadImageWithVips("whatever.png", 200, 200); err == nil {
		t.Error("LoadImageWithVips() without initialization should return an error")
	}
}
