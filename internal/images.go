package internal

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const jpegQuality = 90

// ImagePreparer resizes recipe folder images to a uniform width and
// renames them <folder>_<n>.jpg so uploads are predictable.
type ImagePreparer struct {
	width   int
	verbose bool
}

// NewImagePreparer creates a preparer targeting the given width.
func NewImagePreparer(width int, verbose bool) *ImagePreparer {
	return &ImagePreparer{width: width, verbose: verbose}
}

// ResizeImage scales an image to the target width (aspect preserved) and
// writes it as JPEG. Images already at or below the width are re-encoded
// without scaling.
func ResizeImage(srcPath, dstPath string, width int) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening image %s: %w", srcPath, err)
	}
	img, _, err := image.Decode(src)
	src.Close()
	if err != nil {
		return fmt.Errorf("decoding image %s: %w", srcPath, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > width {
		newH := bounds.Dy() * width / bounds.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating image %s: %w", dstPath, err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding jpeg %s: %w", dstPath, err)
	}
	return nil
}

// PrepareFolder resizes every image in one folder and renames it
// <folder>_<n>.jpg in filename order. Source files are removed once the
// resized copy exists, except when a file already carries its target name.
func (p *ImagePreparer) PrepareFolder(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading folder %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if !entry.IsDir() && IsImageFile(entry.Name()) {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)

	folder := filepath.Base(dir)
	for i, name := range images {
		src := filepath.Join(dir, name)
		dst := filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", folder, i+1))

		if err := ResizeImage(src, dst, p.width); err != nil {
			return err
		}
		if src != dst {
			if err := os.Remove(src); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", src, err)
			}
		}
		if p.verbose {
			fmt.Printf("Prepared %s\n", dst)
		}
	}
	return nil
}

// PrepareTree runs PrepareFolder over every recipe folder under root.
func (p *ImagePreparer) PrepareTree(root string) error {
	folders, err := RecipeFolders(root)
	if err != nil {
		return err
	}
	for _, folder := range folders {
		if err := p.PrepareFolder(folder); err != nil {
			return err
		}
	}
	return nil
}
