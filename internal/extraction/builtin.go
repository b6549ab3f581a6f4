package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// BuiltinBackend recovers text with pure-Go heuristics. It is the safety
// net under the external extractor: quality is best-effort, but it never
// fails and never returns empty text.
type BuiltinBackend struct {
	logger *slog.Logger
}

var _ Backend = (*BuiltinBackend)(nil)

// NewBuiltinBackend creates the fallback extractor.
func NewBuiltinBackend(logger *slog.Logger) *BuiltinBackend {
	return &BuiltinBackend{logger: logger}
}

// Extract implements Backend. The error return is always nil.
func (b *BuiltinBackend) Extract(_ context.Context, req Request) (*Result, error) {
	text, method := b.dispatch(req)
	if strings.TrimSpace(text) == "" {
		text = placeholderText(req)
		method = "placeholder"
	}
	return &Result{
		Text:      text,
		Method:    method,
		CharCount: len(text),
		Success:   true,
	}, nil
}

func (b *BuiltinBackend) dispatch(req Request) (string, string) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	mime := strings.ToLower(req.MimeType)

	switch {
	case mime == "application/pdf" || ext == ".pdf":
		return extractPDFText(req)
	case mime == "text/csv" || ext == ".csv":
		return extractCSVTable(req.Data)
	case strings.Contains(mime, "spreadsheet") || strings.Contains(mime, "ms-excel") ||
		ext == ".xlsx" || ext == ".xls":
		return extractExcelStrings(req.Data)
	case strings.Contains(mime, "wordprocessingml") || ext == ".docx":
		return extractDocxText(req.Data)
	case strings.HasPrefix(mime, "image/") || ext == ".jpg" || ext == ".jpeg" || ext == ".png":
		return imagePlaceholder(req), "image_placeholder"
	default:
		return permissiveText(req.Data), "permissive_decode"
	}
}

// extractPDFText walks BT...ET text objects and decodes the parenthesized
// and hex string runs inside them. Compressed streams are invisible to this
// pass; the permissive decode below catches whatever plain text remains.
func extractPDFText(req Request) (string, string) {
	latin := latin1String(req.Data)

	var parts []string
	for pos := 0; ; {
		start := strings.Index(latin[pos:], "BT")
		if start == -1 {
			break
		}
		start += pos
		end := strings.Index(latin[start:], "ET")
		if end == -1 {
			break
		}
		end += start
		parts = append(parts, decodeTextObject(latin[start+2:end])...)
		pos = end + 2
	}

	if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
		return text, "pdf_text_objects"
	}

	if text := permissiveText(req.Data); strings.TrimSpace(text) != "" {
		return text, "pdf_permissive"
	}

	return fmt.Sprintf("[PDF document: %s (%d KB). No extractable text layer found.]",
		req.Filename, kb(len(req.Data))), "pdf_placeholder"
}

// decodeTextObject pulls string operands out of one BT...ET block.
func decodeTextObject(block string) []string {
	var runs []string
	for i := 0; i < len(block); i++ {
		switch block[i] {
		case '(':
			run, next := decodeParenRun(block, i)
			if s := strings.TrimSpace(run); s != "" {
				runs = append(runs, s)
			}
			i = next
		case '<':
			run, next := decodeHexRun(block, i)
			if s := strings.TrimSpace(run); s != "" {
				runs = append(runs, s)
			}
			i = next
		}
	}
	return runs
}

// decodeParenRun decodes one (...) string starting at the opening paren,
// honoring \(, \), \\ escapes and balanced nesting. Returns the decoded
// text and the index of the closing paren.
func decodeParenRun(s string, start int) (string, int) {
	var b strings.Builder
	depth := 1
	i := start + 1
	for ; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n', 'r', 't':
				b.WriteByte(' ')
			case '(', ')', '\\':
				b.WriteByte(s[i])
			default:
				// Octal and unknown escapes are dropped.
			}
			continue
		}
		if c == '(' {
			depth++
			b.WriteByte(c)
			continue
		}
		if c == ')' {
			depth--
			if depth == 0 {
				break
			}
			b.WriteByte(c)
			continue
		}
		if isPrintableByte(c) {
			b.WriteByte(c)
		}
	}
	return b.String(), i
}

// decodeHexRun decodes one <...> hex string starting at the opening angle
// bracket. Returns the decoded text and the index of the closing bracket.
func decodeHexRun(s string, start int) (string, int) {
	end := strings.IndexByte(s[start:], '>')
	if end == -1 {
		return "", len(s) - 1
	}
	end += start

	var digits []byte
	for _, c := range []byte(s[start+1 : end]) {
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	// Odd digit counts are padded with a trailing zero.
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var b strings.Builder
	for i := 0; i+1 < len(digits); i += 2 {
		v := hexVal(digits[i])<<4 | hexVal(digits[i+1])
		if isPrintableByte(v) {
			b.WriteByte(v)
		}
	}
	return b.String(), end
}

// extractCSVTable renders the file as a Markdown table. Quoted fields with
// doubled-quote escapes are handled; display is capped at 20 data rows.
func extractCSVTable(data []byte) (string, string) {
	const maxRows = 20

	lines := nonEmptyLines(permissiveText(data))
	if len(lines) == 0 {
		return "", "csv_table"
	}

	header := parseCSVLine(lines[0])
	var b strings.Builder
	writeMarkdownRow(&b, header)
	separator := make([]string, len(header))
	for i := range separator {
		separator[i] = "---"
	}
	writeMarkdownRow(&b, separator)

	rows := lines[1:]
	shown := len(rows)
	if shown > maxRows {
		shown = maxRows
	}
	for _, line := range rows[:shown] {
		writeMarkdownRow(&b, parseCSVLine(line))
	}
	if len(rows) > maxRows {
		fmt.Fprintf(&b, "\n*Showing %d of %d rows*\n", maxRows, len(rows))
	}
	return b.String(), "csv_table"
}

// parseCSVLine splits one CSV line into fields. Inside quotes, a doubled
// quote is a literal quote and commas lose their meaning.
func parseCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			cur.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// extractExcelStrings scavenges readable runs out of a binary workbook by
// splitting on null bytes and keeping the segments that look like text.
func extractExcelStrings(data []byte) (string, string) {
	const (
		maxItems   = 20
		minSegment = 3
		minRatio   = 0.8
	)

	var items []string
	for _, seg := range strings.Split(latin1String(data), "\x00") {
		s := strings.TrimSpace(stripNonPrintable(seg))
		if len(s) < minSegment || printableRatio(seg) < minRatio {
			continue
		}
		items = append(items, s)
		if len(items) == maxItems {
			break
		}
	}
	if len(items) == 0 {
		return "", "excel_strings"
	}

	var b strings.Builder
	b.WriteString("Spreadsheet content (recovered strings):\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String(), "excel_strings"
}

var docxTextRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDocxText harvests <w:t> runs. On raw (usually zip-compressed)
// bytes this often finds nothing, in which case the permissive decode runs.
func extractDocxText(data []byte) (string, string) {
	matches := docxTextRe.FindAllStringSubmatch(latin1String(data), -1)
	if len(matches) > 0 {
		parts := make([]string, 0, len(matches))
		for _, m := range matches {
			if s := strings.TrimSpace(m[1]); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " "), "docx_tags"
		}
	}
	return permissiveText(data), "docx_permissive"
}

func imagePlaceholder(req Request) string {
	return fmt.Sprintf("[Image file: %s (%d KB). Text content is read during AI analysis.]",
		req.Filename, kb(len(req.Data)))
}

func placeholderText(req Request) string {
	return fmt.Sprintf("[Document: %s (%d KB). Content could not be extracted.]",
		req.Filename, kb(len(req.Data)))
}

// permissiveText decodes bytes as UTF-8, dropping invalid sequences and
// control characters but keeping line structure.
func permissiveText(data []byte) string {
	valid := strings.ToValidUTF8(string(data), "")
	return strings.TrimSpace(stripNonPrintable(valid))
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

func printableRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// latin1String maps every byte to the rune with the same value, so binary
// formats can be scanned with string operations without UTF-8 mangling.
func latin1String(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isPrintableByte(c byte) bool {
	return c >= 0x20 && c < 0x7f
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func kb(n int) int {
	return n / 1024
}
