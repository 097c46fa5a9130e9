// imageprocessor.go - Image normalization before OCR

package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// NormalizeImage decodes data (honouring EXIF orientation), shrinks it so the
// longer side is at most maxDimension and re-encodes it as PNG, matching the
// image/png label sent to Gemini. maxDimension <= 0 disables resizing.
func NormalizeImage(data []byte, maxDimension int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = resizeToFit(img, maxDimension)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), nil
}

func resizeToFit(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return img
	}
	if width > height {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}
