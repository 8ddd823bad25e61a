// =============================================================================
// ligaconv - Shared Types
// =============================================================================
//
// This package contains the types shared by the ingestion, conversion and
// session packages. Keeping them here avoids import cycles between:
//   - csvparser (produces Records)
//   - ingest    (owns FileEntries)
//   - converter (renders Records under ConversionOptions)
//   - session   (persists FileEntries + ConversionOptions)
//
// =============================================================================

package types

import (
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// =============================================================================
// RECORD
// =============================================================================

// Column names of the fixed export schema.
const (
	FieldQuantity = "Quantidade"
	FieldCardName = "Card (EN)"
	FieldEdition  = "Edicao (Sigla)"
	FieldExtras   = "Extras"
)

// Record is one decoded CSV row keyed by header name.
// Records are never modified after decoding.
type Record map[string]string

// Quantity returns the quantity column.
func (r Record) Quantity() string { return r[FieldQuantity] }

// CardName returns the English card name column.
func (r Record) CardName() string { return r[FieldCardName] }

// Edition returns the edition code, or "" when the column is absent.
func (r Record) Edition() string { return r[FieldEdition] }

// Extras returns the extras column and whether it was present at all.
func (r Record) Extras() (string, bool) {
	v, ok := r[FieldExtras]
	return v, ok
}

// =============================================================================
// FILES
// =============================================================================

// FileMeta is the metadata a file is identified by.
type FileMeta struct {
	// Name is the base file name, e.g. "collection.csv".
	Name string

	// LastModified is the modification time in epoch milliseconds.
	LastModified int64

	// Size is the file size in bytes.
	Size int64
}

// FileEntry is one tracked file together with its decoded records.
type FileEntry struct {
	// ID is derived from the file metadata and is the deduplication key.
	ID string `json:"id"`

	// Name is the original file name.
	Name string `json:"name"`

	// Records holds the decoded rows in file order.
	Records []Record `json:"records"`

	// Included controls whether the records feed the rendered output.
	Included bool `json:"included"`

	// IsRestored marks entries that came out of a restored session.
	// Only meaningful during a single ingestion event.
	IsRestored bool `json:"isRestored"`
}

// =============================================================================
// CONVERSION OPTIONS
// =============================================================================

// Condition is a card condition code.
type Condition string

// The five accepted condition codes.
const (
	ConditionNM Condition = "nm"
	ConditionSP Condition = "sp"
	ConditionMP Condition = "mp"
	ConditionHP Condition = "hp"
	ConditionDM Condition = "dm"
)

// ErrUnknownCondition is returned for any code outside the five above.
var ErrUnknownCondition = errors.Base("unknown condition")

// Conditions lists the accepted codes in display order.
var Conditions = []Condition{ConditionNM, ConditionSP, ConditionMP, ConditionHP, ConditionDM}

var conditionLabels = map[Condition]string{
	ConditionNM: "Near Mint",
	ConditionSP: "Slightly Played",
	ConditionMP: "Moderately Played",
	ConditionHP: "Heavily Played",
	ConditionDM: "Damaged",
}

// ParseCondition validates a condition code typed by a user. Codes are
// matched case-insensitively ("NM" and "nm" are the same code).
func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := conditionLabels[c]; !ok {
		return "", errors.WithDetails(ErrUnknownCondition, "condition", s)
	}
	return c, nil
}

// Label returns the human readable name of the condition.
func (c Condition) Label() string {
	return conditionLabels[c]
}

// Valid reports whether c is one of the accepted codes.
func (c Condition) Valid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// UnmarshalJSON accepts only the stored lower-case codes. Anything else,
// "NM" included, is rejected instead of being folded into a known code.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Errorf("condition must be a string: %w", err)
	}
	if !Condition(s).Valid() {
		return errors.WithDetails(ErrUnknownCondition, "condition", s)
	}
	*c = Condition(s)
	return nil
}

// ConversionOptions controls how records are rendered.
type ConversionOptions struct {
	// Condition is rendered only when ForceCondition is set.
	Condition Condition `json:"condition"`

	// IgnoreEdition drops the edition tag.
	IgnoreEdition bool `json:"ignoreEdition"`

	// ForceCondition adds the condition tag to every line.
	ForceCondition bool `json:"forceCondition"`
}

// DefaultOptions returns the options a new session starts with.
func DefaultOptions() ConversionOptions {
	return ConversionOptions{
		Condition:      ConditionNM,
		IgnoreEdition:  false,
		ForceCondition: false,
	}
}

// Validate checks that the condition is one of the accepted codes.
func (o ConversionOptions) Validate() error {
	if !o.Condition.Valid() {
		return errors.WithDetails(ErrUnknownCondition, "condition", string(o.Condition))
	}
	return nil
}
