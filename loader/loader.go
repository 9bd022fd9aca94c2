package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"docchat/types"
)

var (
	ErrInvalidFormat = errors.New("only .pdf files are accepted")
	ErrNoText        = errors.New("no extractable text in document")
)

// PDFLoader owns the single-slot upload directory: at most one resident
// file at any time, replaced on every successful upload.
type PDFLoader struct {
	uploadDir string
	logger    *slog.Logger
}

func NewPDFLoader(uploadDir string) (*PDFLoader, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}
	return &PDFLoader{
		uploadDir: uploadDir,
		logger:    slog.Default(),
	}, nil
}

// Ingest validates the filename, replaces the resident file with the new
// upload and extracts its text page by page. The filename check happens
// before the slot is touched, so a rejected upload leaves the previous
// document in place.
func (l *PDFLoader) Ingest(ctx context.Context, filename string, r io.Reader) (*types.Document, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, ErrInvalidFormat
	}

	if err := l.clearSlot(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.uploadDir, filepath.Base(filename))
	if err := saveFile(path, r); err != nil {
		return nil, err
	}

	if err := pdfapi.ValidateFile(path, nil); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err)
	}

	text, pages, err := l.extractText(ctx, path)
	if err != nil {
		// Keep slot and index in agreement: a file that produced no
		// indexable text must not stay resident.
		os.Remove(path)
		return nil, err
	}
	l.logger.Info("extracted text from upload", "file", path, "chars", len(text), "pages", pages)

	return &types.Document{
		ID:         uuid.New(),
		Title:      generateTitle(path),
		Content:    Truncate(text),
		Source:     "pdf",
		SourcePath: path,
		Pages:      pages,
		CreatedAt:  time.Now(),
	}, nil
}

// extractText concatenates the text of every page, separated by a blank
// line. Pages without extractable text (scans, pure images) are skipped.
func (l *PDFLoader) extractText(ctx context.Context, path string) (string, int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("error opening pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			l.logger.Warn("no text found on page", "page", i)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			l.logger.Warn("no text found on page", "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	if sb.Len() == 0 {
		return "", total, ErrNoText
	}
	return sb.String(), total, nil
}

func (l *PDFLoader) clearSlot() error {
	entries, err := os.ReadDir(l.uploadDir)
	if err != nil {
		return fmt.Errorf("error reading upload directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(l.uploadDir, e.Name())); err != nil {
			return fmt.Errorf("error removing previous upload: %w", err)
		}
	}
	return nil
}

func saveFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func generateTitle(filePath string) string {
	fileName := filepath.Base(filePath)
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		fileName = fileName[:len(fileName)-4]
	}
	fileName = strings.ReplaceAll(fileName, "_", " ")
	fileName = strings.ReplaceAll(fileName, "-", " ")
	return fileName
}
