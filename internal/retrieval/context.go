package retrieval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/4everinbeta/ragchat/internal/models"
)

// FormatContext renders ranked results as numbered source blocks separated by a blank line:
//
//	Source 1 (score 0.912):
//	<text>
//
// Results are rendered in the order given.
func FormatContext(results []models.ScoredDocument) string {
	if len(results) == 0 {
		return ""
	}
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Source %d (score %s):\n%s", i+1, FormatScore(r.Score), r.Document.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// FormatScore renders score with three decimals, rounding half away from zero.
func FormatScore(score float64) string {
	return strconv.FormatFloat(RoundScore(score), 'f', 3, 64)
}

// RoundScore rounds score to three decimals, half away from zero, using the shortest decimal
// form of score. 0.8765, stored as 0.87649999..., rounds to 0.877 while 0.1234999999996 stays 0.123.
func RoundScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return score
	}
	digits := strconv.FormatFloat(math.Abs(score), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	if len(frac) <= 3 {
		return score
	}
	n, err := strconv.ParseInt(whole+frac[:3], 10, 64)
	if err != nil {
		return math.Round(score*1000) / 1000
	}
	if frac[3] >= '5' {
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Copysign(float64(n)/1000, score)
}
