package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize bounds uploaded images
const MaxImageSize = 10 << 20

var (
	ErrNotImage      = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrImageTooLarge = errors.New("the uploaded image is too large")
)

// rasterImageTypes are the upload formats accepted for post images. Vector
// and markup formats such as SVG are refused since media is served from the
// site's own origin.
var rasterImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

// SaveImage stores an uploaded image under folder/<uuid><ext> and returns its
// key. Files whose content does not sniff as a raster image are rejected.
func SaveImage(ctx context.Context, s Storage, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), rasterImageTypes...) {
		return "", ErrNotImage
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), mtype.Extension())
	if err := s.Put(ctx, key, bytes.NewReader(data), mtype.String()); err != nil {
		return "", err
	}
	return key, nil
}
