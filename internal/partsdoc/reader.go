package partsdoc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Reader renders a supplier parts-invoice document into page images ready
// for vision extraction. PDFs are rasterized page by page; plain image
// uploads pass through re-encoded as JPEG.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new document reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// PageImages renders the document at docPath into JPEG page images.
func (r *Reader) PageImages(docPath string) ([][]byte, error) {
	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("document not found: %s", docPath)
	}

	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return r.renderPDF(docPath)
	case ".jpg", ".jpeg", ".png":
		return r.readImageFile(docPath, ext)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (r *Reader) renderPDF(pdfPath string) ([][]byte, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	r.logger.Debug("Rendering parts invoice PDF", zap.Int("total_pages", pageCount))

	var images [][]byte
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			r.logger.Warn("Failed to render page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		imgBytes, err := encodeJPEG(img)
		if err != nil {
			r.logger.Warn("Failed to encode page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		images = append(images, imgBytes)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", pdfPath)
	}
	return images, nil
}

func (r *Reader) readImageFile(imagePath, ext string) ([][]byte, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var img image.Image
	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	case ".png":
		img, err = png.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	imgBytes, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}
	return [][]byte{imgBytes}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
