package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinForTest() *BuiltinBackend {
	return NewBuiltinBackend(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

func TestParseCSVLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"Plain", "a,b,c", []string{"a", "b", "c"}},
		{"QuotedComma", `"Acme, Inc.",450.00`, []string{"Acme, Inc.", "450.00"}},
		{"EscapedQuote", `"He said ""stop""",x`, []string{`He said "stop"`, "x"}},
		{"WhitespaceTrimmed", " spaced , fields ", []string{"spaced", "fields"}},
		{"TrailingEmptyField", "a,", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCSVLine(tt.line))
		})
	}
}

func TestBuiltinBackend_CSV(t *testing.T) {
	backend := builtinForTest()

	t.Run("RendersMarkdownTable", func(t *testing.T) {
		data := []byte("Date,Description,Amount\n" +
			`01/02/2024,"Acme, Inc. payment",450.00` + "\n" +
			`02/02/2024,"He said ""stop""",12.50` + "\n")

		res, err := backend.Extract(context.Background(), Request{
			Data: data, Filename: "transactions.csv", MimeType: "text/csv",
		})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "csv_table", res.Method)
		assert.Contains(t, res.Text, "| Date | Description | Amount |")
		assert.Contains(t, res.Text, "| 01/02/2024 | Acme, Inc. payment | 450.00 |")
		assert.Contains(t, res.Text, `| 02/02/2024 | He said "stop" | 12.50 |`)
	})

	t.Run("CapsAtTwentyRows", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("id,amount\n")
		for i := 1; i <= 25; i++ {
			fmt.Fprintf(&b, "%d,%d.00\n", i, i*10)
		}

		res, err := backend.Extract(context.Background(), Request{
			Data: []byte(b.String()), Filename: "big.csv", MimeType: "text/csv",
		})

		require.NoError(t, err)
		assert.Contains(t, res.Text, "| 20 | 200.00 |")
		assert.NotContains(t, res.Text, "| 21 | 210.00 |")
		assert.Contains(t, res.Text, "*Showing 20 of 25 rows*")
	})
}

func TestBuiltinBackend_PDF(t *testing.T) {
	backend := builtinForTest()

	t.Run("DecodesTextObjects", func(t *testing.T) {
		data := []byte("%PDF-1.4\n1 0 obj\nBT /F1 12 Tf (Invoice Total: \\(USD\\) 99.50) Tj <48656C6C6F> Tj ET\nendobj")

		res, err := backend.Extract(context.Background(), Request{
			Data: data, Filename: "invoice.pdf", MimeType: "application/pdf",
		})

		require.NoError(t, err)
		assert.Equal(t, "pdf_text_objects", res.Method)
		assert.Contains(t, res.Text, "Invoice Total: (USD) 99.50")
		assert.Contains(t, res.Text, "Hello")
	})

	t.Run("KeepsNestedParens", func(t *testing.T) {
		data := []byte("BT (outer (inner) tail) Tj ET")

		res, err := backend.Extract(context.Background(), Request{
			Data: data, Filename: "nested.pdf", MimeType: "application/pdf",
		})

		require.NoError(t, err)
		assert.Contains(t, res.Text, "outer (inner) tail")
	})

	t.Run("PadsOddHexRun", func(t *testing.T) {
		data := []byte("BT <414> Tj ET")

		res, err := backend.Extract(context.Background(), Request{
			Data: data, Filename: "hex.pdf", MimeType: "application/pdf",
		})

		require.NoError(t, err)
		assert.Contains(t, res.Text, "A@")
	})

	t.Run("BinaryWithoutTextLayerGetsPlaceholder", func(t *testing.T) {
		res, err := backend.Extract(context.Background(), Request{
			Data: []byte{0x00, 0x01, 0x02, 0x03}, Filename: "scan.pdf", MimeType: "application/pdf",
		})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "pdf_placeholder", res.Method)
		assert.Contains(t, res.Text, "scan.pdf")
	})
}

func TestBuiltinBackend_Spreadsheet(t *testing.T) {
	backend := builtinForTest()

	t.Run("RecoversPrintableStrings", func(t *testing.T) {
		data := []byte("\x00\x00Quarterly Statement\x00\x01\x02\x03\x04ab\x00Total Balance 9,500\x00ok\x00")

		res, err := backend.Extract(context.Background(), Request{
			Data: data, Filename: "report.xlsx",
			MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})

		require.NoError(t, err)
		assert.Equal(t, "excel_strings", res.Method)
		assert.Contains(t, res.Text, "- Quarterly Statement")
		assert.Contains(t, res.Text, "- Total Balance 9,500")
		assert.NotContains(t, res.Text, "- ok", "segments under three characters are noise")
	})

	t.Run("PureBinaryGetsPlaceholder", func(t *testing.T) {
		res, err := backend.Extract(context.Background(), Request{
			Data: []byte{0x01, 0x02, 0x03, 0x04, 0x05}, Filename: "opaque.xls", MimeType: "application/vnd.ms-excel",
		})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "placeholder", res.Method)
		assert.NotEmpty(t, res.Text)
	})
}

func TestBuiltinBackend_Docx(t *testing.T) {
	backend := builtinForTest()

	data := []byte(`PK-junk<w:t>Final</w:t>more<w:t xml:space="preserve"> Notice</w:t>tail`)

	res, err := backend.Extract(context.Background(), Request{
		Data: data, Filename: "letter.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	})

	require.NoError(t, err)
	assert.Equal(t, "docx_tags", res.Method)
	assert.Equal(t, "Final Notice", res.Text)
}

func TestBuiltinBackend_Image(t *testing.T) {
	backend := builtinForTest()

	res, err := backend.Extract(context.Background(), Request{
		Data: make([]byte, 2048), Filename: "receipt.jpg", MimeType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "image_placeholder", res.Method)
	assert.Contains(t, res.Text, "receipt.jpg")
	assert.Contains(t, res.Text, "2 KB")
}

func TestBuiltinBackend_Fallbacks(t *testing.T) {
	backend := builtinForTest()

	t.Run("UnknownTypeDecodesPermissively", func(t *testing.T) {
		res, err := backend.Extract(context.Background(), Request{
			Data: []byte("plain text content"), Filename: "notes.txt", MimeType: "text/plain",
		})

		require.NoError(t, err)
		assert.Equal(t, "permissive_decode", res.Method)
		assert.Equal(t, "plain text content", res.Text)
	})

	t.Run("EmptyInputNeverYieldsEmptyText", func(t *testing.T) {
		res, err := backend.Extract(context.Background(), Request{Filename: "mystery.bin"})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "placeholder", res.Method)
		assert.Contains(t, res.Text, "mystery.bin")
		assert.Equal(t, len(res.Text), res.CharCount)
	})
}
