package extraction

import (
	"math"
	"regexp"
	"strings"
)

// QualityReport grades extracted text so downstream consumers can decide
// how much to trust it.
type QualityReport struct {
	Score  int    `json:"score"`
	Status string `json:"status"`
}

const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

var (
	financialTokenRe = regexp.MustCompile(`(?i)(\$|USD|INR|EUR|amount|total)`)
	dateTokenRe      = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

// AssessQuality scores extracted content against the original file size.
// The baseline is 50; length, density relative to the source, and the
// presence of financial and date tokens add the rest. Scores above 80 are
// high, above 60 medium, anything else low.
func AssessQuality(content string, originalSize int) QualityReport {
	score := 50.0

	length := len(content)
	score += math.Min(35, float64(length)/100)

	if originalSize > 0 {
		density := float64(length) / float64(originalSize) * 15
		score += math.Min(15, math.Round(density))
	}

	if financialTokenRe.MatchString(content) {
		score += 10
	}
	if dateTokenRe.MatchString(content) {
		score += 10
	}

	final := int(math.Max(0, math.Min(100, score)))

	status := QualityLow
	switch {
	case final > 80:
		status = QualityHigh
	case final > 60:
		status = QualityMedium
	}
	return QualityReport{Score: final, Status: status}
}

// TrimmedLength reports the content length ignoring surrounding whitespace.
func TrimmedLength(content string) int {
	return len(strings.TrimSpace(content))
}
