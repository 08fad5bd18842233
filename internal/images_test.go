package internal

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 128, B: 64, A: 255})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func jpegBounds(t *testing.T, path string) image.Rectangle {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img.Bounds()
}

func TestResizeImageScalesDownPreservingAspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	dst := filepath.Join(dir, "wide.jpg")
	writePNG(t, src, 100, 50)

	if err := ResizeImage(src, dst, 40); err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}

	bounds := jpegBounds(t, dst)
	if bounds.Dx() != 40 || bounds.Dy() != 20 {
		t.Errorf("bounds = %dx%d, want 40x20", bounds.Dx(), bounds.Dy())
	}
}

func TestResizeImageNeverUpscales(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "small.png")
	dst := filepath.Join(dir, "small.jpg")
	writePNG(t, src, 20, 10)

	if err := ResizeImage(src, dst, 720); err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}

	bounds := jpegBounds(t, dst)
	if bounds.Dx() != 20 || bounds.Dy() != 10 {
		t.Errorf("bounds = %dx%d, want 20x10", bounds.Dx(), bounds.Dy())
	}
}

func TestPrepareFolderRenamesAndRemovesOriginals(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	folder := filepath.Join(root, "old_fashioned")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(folder, "b-shot.png"), 100, 50)
	writePNG(t, filepath.Join(folder, "a-shot.png"), 100, 50)
	if err := os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewImagePreparer(40, false).PrepareFolder(folder); err != nil {
		t.Fatalf("PrepareFolder: %v", err)
	}

	// Filename order decides numbering: a-shot is 1, b-shot is 2
	for _, name := range []string{"old_fashioned_1.jpg", "old_fashioned_2.jpg"} {
		if !FileExists(filepath.Join(folder, name)) {
			t.Errorf("missing %s", name)
		}
	}
	for _, name := range []string{"a-shot.png", "b-shot.png"} {
		if FileExists(filepath.Join(folder, name)) {
			t.Errorf("original %s not removed", name)
		}
	}
	if !FileExists(filepath.Join(folder, "notes.txt")) {
		t.Error("non-image file should be untouched")
	}
}

func TestPrepareFolderIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	folder := filepath.Join(root, "negroni")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(folder, "shot.png"), 100, 50)

	preparer := NewImagePreparer(40, false)
	if err := preparer.PrepareFolder(folder); err != nil {
		t.Fatalf("first PrepareFolder: %v", err)
	}
	if err := preparer.PrepareFolder(folder); err != nil {
		t.Fatalf("second PrepareFolder: %v", err)
	}

	if !FileExists(filepath.Join(folder, "negroni_1.jpg")) {
		t.Error("negroni_1.jpg missing after second run")
	}
}
