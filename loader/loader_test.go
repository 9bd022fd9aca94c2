package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIngestRejectsNonPDFName(t *testing.T) {
	dir := t.TempDir()
	l, err := NewPDFLoader(dir)
	require.NoError(t, err)

	// A resident document from a previous upload.
	resident := filepath.Join(dir, "previous.pdf")
	require.NoError(t, os.WriteFile(resident, []byte("old"), 0644))

	_, err = l.Ingest(context.Background(), "notes.txt", strings.NewReader("hello"))
	require.ErrorIs(t, err, ErrInvalidFormat)

	// The slot must be untouched by a rejected upload.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "previous.pdf", entries[0].Name())
}

func TestIngestRejectsCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	l, err := NewPDFLoader(dir)
	require.NoError(t, err)

	_, err = l.Ingest(context.Background(), "fake.pdf", strings.NewReader("this is not a pdf"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidFormat))

	// A corrupt upload must not leave a file behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestIngestRejectsTextlessPDF(t *testing.T) {
	dir := t.TempDir()
	l, err := NewPDFLoader(dir)
	require.NoError(t, err)

	_, err = l.Ingest(context.Background(), "scan.pdf", bytes.NewReader(textlessPDF()))
	require.ErrorIs(t, err, ErrNoText)

	// A document that produced no indexable text must not stay in the
	// slot, otherwise slot and index disagree.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// textlessPDF builds a structurally valid single-page PDF without any
// content stream, the shape of a pure image scan.
func textlessPDF() []byte {
	var b bytes.Buffer
	offsets := make([]int, 4)

	b.WriteString("%PDF-1.4\n")
	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	start := b.Len()
	b.WriteString("xref\n0 4\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	b.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&b, "%d\n", start)
	b.WriteString("%%EOF\n")
	return b.Bytes()
}

func TestGenerateTitle(t *testing.T) {
	cases := map[string]string{
		"/tmp/x/annual_report-2024.pdf": "annual report 2024",
		"uploads/Quarterly.PDF":         "Quarterly",
		"plain.pdf":                     "plain",
	}
	for in, want := range cases {
		if got := generateTitle(in); got != want {
			t.Errorf("generateTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
