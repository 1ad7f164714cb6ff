package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

// LoadCSV reads corpus rows from a separated-values export. The first record
// is the header; malformed records are skipped.
func LoadCSV(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := decodeReader(f, opts.Encoding)
	if err != nil {
		return nil, err
	}

	sep := opts.Separator
	if sep == 0 {
		sep = ';'
	}

	r := csv.NewReader(reader)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// Legacy exports carry the odd broken line; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", path, internalerr.ErrInvalidInput)
	}

	col, err := textColumn(records[0], records[1:], opts.TextColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return extract(records[1:], col), nil
}

// decodeReader wraps r with a charset decoder when the export is not UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, internalerr.ErrInvalidConfig)
	}
}
