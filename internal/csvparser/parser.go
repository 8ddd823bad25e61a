// =============================================================================
// ligaconv - CSV Parser Module
// =============================================================================
//
// This module decodes collection exports into Records. The export format is
// fixed: the first row is a header naming the columns, every following row is
// one card line.
//
// FEATURES:
//   - Configurable delimiter via Settings
//   - Blank lines (and rows made only of empty cells) are skipped
//   - A UTF-8 byte order mark in front of the header is removed
//   - Rows with a different column count than the header are malformed
//
// ERROR POLICY:
//   Parse returns the error so callers can drop the file. Decode is the
//   collaborator-facing form: it logs the failure and returns an empty slice.
//
// =============================================================================

package csvparser

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// ErrMalformed wraps every parse failure.
var ErrMalformed = errors.Base("malformed csv")

// ErrInvalidDelimiter is returned for a delimiter encoding/csv cannot use.
var ErrInvalidDelimiter = errors.Base("invalid delimiter")

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the tokenizer settings.
type Settings struct {
	// Delimiter is the field separator. Accepts a single character or one of
	// the names "tab", "pipe", "semicolon". Default: ","
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// DefaultSettings returns comma separated settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ","}
}

// Comma resolves Delimiter to the field separator rune. An empty delimiter
// means ','. Anything other than a known name must be exactly one valid
// UTF-8 character that is not a quote, a line break or the replacement
// character.
func (s Settings) Comma() (rune, error) {
	switch s.Delimiter {
	case "":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	r, size := utf8.DecodeRuneInString(s.Delimiter)
	if r == utf8.RuneError || size != len(s.Delimiter) {
		return 0, errors.WithDetails(ErrInvalidDelimiter, "delimiter", s.Delimiter)
	}
	switch r {
	case '"', '\r', '\n':
		return 0, errors.WithDetails(ErrInvalidDelimiter, "delimiter", s.Delimiter)
	}
	return r, nil
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads CSV text and returns the data rows as Records.
//
// PARAMETERS:
//   - r: The CSV content.
//   - settings: Tokenizer settings.
//
// RETURNS:
//   - The records in file order. Empty input or a header-only file yields an
//     empty, non-nil slice.
//   - An error wrapping ErrMalformed if the content cannot be tokenized, or
//     ErrInvalidDelimiter if the settings name an unusable separator.
func Parse(r io.Reader, settings Settings) ([]types.Record, error) {
	comma, err := settings.Comma()
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(r)
	configureReader(csvReader, comma)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, errors.WithDetails(
				errors.Errorf("%w: %s", ErrMalformed, parseErr.Err),
				"line", parseErr.Line,
				"column", parseErr.Column,
			)
		}
		return nil, errors.Errorf("%w: %s", ErrMalformed, err)
	}

	if len(allRows) == 0 {
		return []types.Record{}, nil
	}

	headers := cleanHeaders(allRows[0])
	return extractDataRows(allRows[1:], headers), nil
}

// Decode is Parse over a string that never fails: malformed input is logged
// and yields an empty slice.
func Decode(ctx context.Context, text string, settings Settings) []types.Record {
	records, err := Parse(strings.NewReader(text), settings)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("error reading or parsing the CSV content")
		return []types.Record{}
	}
	return records
}

// configureReader configures the CSV reader for the resolved separator.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Every row must have as many fields as the header.
	reader.FieldsPerRecord = 0

	// Values are passed through untouched, including surrounding spaces.
	reader.TrimLeadingSpace = false
	reader.LazyQuotes = false
}

// cleanHeaders trims header cells and drops a leading byte order mark.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		cleaned[i] = strings.TrimSpace(header)
	}

	return cleaned
}

// extractDataRows converts rows into Records keyed by header.
func extractDataRows(rows [][]string, headers []string) []types.Record {
	records := make([]types.Record, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		record := make(types.Record, len(headers))
		for colIndex, header := range headers {
			if header == "" {
				continue
			}
			record[header] = row[colIndex]
		}

		records = append(records, record)
	}

	return records
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
