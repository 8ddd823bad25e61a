// =============================================================================
// ligaconv - Converter Module
// =============================================================================
//
// This module renders Records into the LigaMagic bulk-import line format:
//
//   {qty} {card}[ [QUALIDADE={cond}]] [EDICAO={edition}][ [EXTRAS={extras}]]
//
// RULES:
//   - Quantity and card name are always emitted.
//   - The condition tag is emitted only when ForceCondition is set.
//   - The edition tag is emitted unless IgnoreEdition is set; the edition code
//     is copied verbatim (empty when the column is missing).
//   - The extras tag is emitted only when the extras value is non-empty after
//     trimming; the value itself is copied untouched.
//   - The single space before the edition slot is always written, so an
//     ignored edition leaves a double space before the extras tag.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Tag names used in the output format.
const (
	TagCondition = "QUALIDADE"
	TagEdition   = "EDICAO"
	TagExtras    = "EXTRAS"
)

// RenderLine renders one record.
//
// PARAMETERS:
//   - record: The decoded CSV row.
//   - options: The conversion options.
//
// RETURNS:
//   - The output line, without a trailing newline.
func RenderLine(record types.Record, options types.ConversionOptions) string {
	var b strings.Builder

	b.WriteString(record.Quantity())
	b.WriteByte(' ')
	b.WriteString(record.CardName())

	if options.ForceCondition {
		writeTag(&b, " ", TagCondition, string(options.Condition))
	}

	b.WriteByte(' ')
	if !options.IgnoreEdition {
		writeTag(&b, "", TagEdition, record.Edition())
	}

	if extras, ok := record.Extras(); ok && strings.TrimSpace(extras) != "" {
		writeTag(&b, " ", TagExtras, extras)
	}

	return b.String()
}

// RenderAll renders records in input order, one line each, joined with "\n".
// No records yields "".
func RenderAll(records []types.Record, options types.ConversionOptions) string {
	if len(records) == 0 {
		return ""
	}

	lines := make([]string, len(records))
	for i, record := range records {
		lines[i] = RenderLine(record, options)
	}
	return strings.Join(lines, "\n")
}

func writeTag(b *strings.Builder, prefix, name, value string) {
	b.WriteString(prefix)
	b.WriteByte('[')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte(']')
}
