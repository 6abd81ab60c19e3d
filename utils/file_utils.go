package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Maximum upload size (10MB)
	maxImageSize = 10 * 1024 * 1024
	// Longest side of a stored image
	maxImageDimension = 1200
)

var (
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
	unsafeSubDir = regexp.MustCompile(`[^a-z0-9-]`)
)

// ImageStore keeps uploaded images on local disk under dir and serves them
// from urlPrefix. Large images are scaled down before they are written.
type ImageStore struct {
	dir       string
	urlPrefix string
}

func NewImageStore(dir, urlPrefix string) *ImageStore {
	return &ImageStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Dir is the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// ValidateImageFile checks the extension and size of an upload.
func ValidateImageFile(filename string, size int) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return BadRequest("Unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}
	if size > maxImageSize {
		return BadRequest(fmt.Sprintf("Image too large. Maximum size is %d bytes", maxImageSize))
	}
	if size == 0 {
		return BadRequest("Image file is empty")
	}
	return nil
}

// SaveImage decodes data, fits it within maxImageDimension and writes it
// under subDir with a generated name. It returns the public URL.
func (s *ImageStore) SaveImage(data []byte, filename, subDir string) (string, error) {
	if err := ValidateImageFile(filename, len(data)); err != nil {
		return "", err
	}
	subDir = unsafeSubDir.ReplaceAllString(strings.ToLower(subDir), "")
	if subDir == "" {
		return "", fmt.Errorf("invalid image directory")
	}

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return "", BadRequest("Unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", BadRequest("Not an image! Please upload only images.")
	}

	b := img.Bounds()
	if b.Dx() > maxImageDimension || b.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	fullPath := filepath.Join(s.dir, subDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.urlPrefix, subDir, name), nil
}

// RemoveImage deletes a file previously returned by SaveImage. URLs that do
// not belong to the store are ignored.
func (s *ImageStore) RemoveImage(url string) error {
	rel := strings.TrimPrefix(url, s.urlPrefix+"/")
	if rel == url || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
