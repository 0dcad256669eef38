package limeblog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/image/draw"
)

const (
	thumbMaxWidth = 480
	thumbQuality  = 80
)

// Upload failures surfaced to the caller with distinct messages.
var (
	ErrImageTooLarge = errors.New("image exceeds the upload size limit")
	ErrImageType     = errors.New("unsupported image type")
)

// Extension is derived from the validated MIME type, never from the
// client-supplied filename.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// ImageStore persists uploaded images under a per-category subpath of the
// upload area and generates thumbnails for formats the stdlib can decode.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore returns an ImageStore rooted at dir with the given size cap.
func NewImageStore(dir string, maxBytes int64) *ImageStore {
	return &ImageStore{dir: dir, maxBytes: maxBytes}
}

// Save validates the upload and writes it under dir/<category>/. It returns
// server-relative URLs for the image and, when one could be generated, its
// thumbnail.
func (s *ImageStore) Save(category string, file *multipart.FileHeader) (string, string, error) {
	mimeType := file.Header.Get("Content-Type")
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrImageType, mimeType)
	}
	if file.Size > s.maxBytes {
		return "", "", fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, file.Size, s.maxBytes)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, s.maxBytes)
	}

	dir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}

	name := strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + randomSuffix(6)
	if err := os.WriteFile(filepath.Join(dir, name+ext), data, 0o644); err != nil {
		return "", "", fmt.Errorf("write image: %w", err)
	}
	imageURL := path.Join("/uploads", category, name+ext)

	thumbURL := ""
	if thumbName, err := s.writeThumbnail(dir, name, mimeType, data); err != nil {
		// The original upload already succeeded; a failed thumbnail only
		// costs the listing pages their small variant.
		log.Printf("thumbnail for %s: %v", imageURL, err)
	} else if thumbName != "" {
		thumbURL = path.Join("/uploads", category, thumbName)
	}
	return imageURL, thumbURL, nil
}

// writeThumbnail renders a JPEG variant at most thumbMaxWidth wide. Formats
// without a stdlib decoder (webp, avif) are skipped, not errors.
func (s *ImageStore) writeThumbnail(dir, name, mimeType string, data []byte) (string, error) {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
	default:
		return "", nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbMaxWidth {
		newH := h * thumbMaxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	thumbName := name + "-thumb.jpg"
	out, err := os.Create(filepath.Join(dir, thumbName))
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return thumbName, nil
}
