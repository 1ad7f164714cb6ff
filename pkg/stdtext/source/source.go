// Package source loads historical service-line corpora from CSV and XLSX
// exports. Rows are cleaned of embedded line breaks and blank lines are
// dropped; deduplication is left to the model fit.
package source

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

// minMedianLength is the smallest median cell length a column must have for
// the text-column heuristic to pick it.
const minMedianLength = 15

// Options configure corpus loading.
type Options struct {
	// TextColumn names the header of the column holding the service text.
	// Empty selects the column whose cells are longest on median.
	TextColumn string
	// Separator is the CSV field separator. Unset means ';'.
	Separator rune
	// Encoding is the CSV byte encoding: "utf-8" (default) or
	// "windows-1252".
	Encoding string
}

// Load reads corpus rows from path, dispatching on the file extension:
// .xlsx is read as a workbook, anything else as CSV.
func Load(path string, opts Options) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opts)
	}
	return LoadCSV(path, opts)
}

var spaceRE = regexp.MustCompile(`\s+`)

// cleanCell flattens a cell to a single trimmed line. Legacy exports carry
// both real line breaks and the literal two-character sequences \r and \n.
func cleanCell(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", `\r`, " ", `\n`, " ").Replace(s)
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// textColumn resolves the text column index. A named column must exist; with
// no name the column with the largest median cell length wins, provided it
// exceeds minMedianLength, and the last column is the fallback.
func textColumn(header []string, rows [][]string, name string) (int, error) {
	if len(header) == 0 {
		return 0, fmt.Errorf("no header row: %w", internalerr.ErrInvalidInput)
	}
	if name != "" {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("text column %q not found: %w", name, internalerr.ErrInvalidInput)
	}

	best := len(header) - 1
	bestMedian := 0.0
	for col := range header {
		m := medianCellLength(rows, col)
		if m >= bestMedian && m > minMedianLength {
			best, bestMedian = col, m
		}
	}
	return best, nil
}

// medianCellLength measures the median rune length of a column, counting
// missing cells as empty.
func medianCellLength(rows [][]string, col int) float64 {
	if len(rows) == 0 {
		return 0
	}
	lengths := make([]int, len(rows))
	for i, row := range rows {
		if col < len(row) {
			lengths[i] = len([]rune(row[col]))
		}
	}
	sort.Ints(lengths)

	mid := len(lengths) / 2
	if len(lengths)%2 == 1 {
		return float64(lengths[mid])
	}
	return float64(lengths[mid-1]+lengths[mid]) / 2
}

// extract pulls, cleans and filters the chosen column from data rows.
func extract(rows [][]string, col int) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		text := cleanCell(row[col])
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}
