// internal/services/image_service.go
package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"

	// Register decoders for the accepted upload formats.
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/marketloop/shop-backend/internal/config"
)

const optimizedJPEGQuality = 85

// ImageService validates raw uploads and renders the canonical JPEG asset
// plus the named thumbnail set. It never touches storage; StorageService
// does that with the bytes produced here.
type ImageService struct {
	config *config.Config
}

type ProcessedImage struct {
	Main       []byte
	Thumbnails map[string][]byte
	Width      int
	Height     int
	Format     string
}

func NewImageService(cfg *config.Config) *ImageService {
	return &ImageService{config: cfg}
}

// Process decodes and validates an uploaded image, then produces the
// optimized main asset and every thumbnail size in config.ThumbnailSizes.
func (s *ImageService) Process(data []byte) (*ProcessedImage, error) {
	if int64(len(data)) > s.config.Upload.MaxImageBytes {
		return nil, fmt.Errorf("%w: image is %d bytes, limit is %d",
			ErrImageTooLarge, len(data), s.config.Upload.MaxImageBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	switch format {
	case "jpeg", "png", "webp":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width < s.config.Upload.MinDimension || height < s.config.Upload.MinDimension {
		return nil, fmt.Errorf("%w: %dx%d is below the %dpx minimum",
			ErrImageDimensions, width, height, s.config.Upload.MinDimension)
	}
	if width > s.config.Upload.MaxDimension || height > s.config.Upload.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds the %dpx maximum",
			ErrImageDimensions, width, height, s.config.Upload.MaxDimension)
	}

	main, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}

	thumbs := make(map[string][]byte, len(config.ThumbnailSizes))
	for name, size := range config.ThumbnailSizes {
		thumb := imaging.Resize(img, size, 0, imaging.Lanczos)
		encoded, err := encodeJPEG(thumb)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s thumbnail: %w", name, err)
		}
		thumbs[name] = encoded
	}

	return &ProcessedImage{
		Main:       main,
		Thumbnails: thumbs,
		Width:      width,
		Height:     height,
		Format:     format,
	}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: optimizedJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
