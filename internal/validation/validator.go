// =============================================================================
// ligaconv - Record Validation
// =============================================================================
//
// This module checks decoded records against the collection export schema
// after ingestion. It never blocks ingestion or rendering: a record with
// problems is still tracked and still rendered as-is. The findings are
// reported so the user can fix the source file.
//
// CHECKS:
//   - File-level: the required columns are present in the header.
//   - Row-level:  quantity and card name are not blank, quantity is a
//                 positive integer.
//
// ERROR HANDLING:
//   - Findings are collected, not returned one at a time
//   - Each finding carries its file, row, field and value
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// requiredFields must be present and non-blank in every record.
var requiredFields = []string{types.FieldQuantity, types.FieldCardName}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityWarning or SeverityError.
	Severity string

	// FileID and FileName identify the tracked file.
	FileID   string
	FileName string

	// Field is the column that failed validation.
	Field string

	// Value is the offending value.
	Value string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based data row number (0 for file-level findings).
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber == 0 {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.FileName, e.Message)
	}
	return fmt.Sprintf("[%s] %s, row %d, field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.FileName,
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no error-level findings.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RecordsValidated is the total number of records checked.
	RecordsValidated int

	// FilesValidated is the total number of files checked.
	FilesValidated int
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// ValidateAll validates every file and summarises the findings.
func ValidateAll(files []types.FileEntry) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  []*ValidationError{},
	}

	for _, file := range files {
		findings := ValidateFile(file)
		result.FilesValidated++
		result.RecordsValidated += len(file.Records)

		for _, f := range findings {
			if f.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
			}
		}
		result.Errors = append(result.Errors, findings...)
	}

	return result
}

// ValidateFile validates the records of one tracked file.
//
// A missing required column is reported once for the file instead of once
// per row, as an error: no line of that file can render correctly.
func ValidateFile(file types.FileEntry) []*ValidationError {
	var findings []*ValidationError
	if len(file.Records) == 0 {
		return findings
	}

	missing := missingColumns(file.Records[0])
	for _, field := range missing {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			FileID:   file.ID,
			FileName: file.Name,
			Field:    field,
			Message:  fmt.Sprintf("column '%s' is missing from the header", field),
		})
	}

	for i, record := range file.Records {
		findings = append(findings, validateRecord(file, i+1, record, missing)...)
	}

	return findings
}

// validateRecord runs the row-level checks, skipping columns already reported
// as missing.
func validateRecord(file types.FileEntry, row int, record types.Record, skip []string) []*ValidationError {
	var findings []*ValidationError

	newFinding := func(field, value, message string) *ValidationError {
		return &ValidationError{
			Severity:  SeverityWarning,
			FileID:    file.ID,
			FileName:  file.Name,
			Field:     field,
			Value:     value,
			Message:   message,
			RowNumber: row,
		}
	}

	for _, field := range requiredFields {
		if contains(skip, field) {
			continue
		}
		if strings.TrimSpace(record[field]) == "" {
			findings = append(findings, newFinding(field, record[field], "required field is blank"))
		}
	}

	if !contains(skip, types.FieldQuantity) {
		if msg := validateQuantity(record.Quantity()); msg != "" {
			findings = append(findings, newFinding(types.FieldQuantity, record.Quantity(), msg))
		}
	}

	return findings
}

// validateQuantity checks that a value is a positive integer. Blank values
// are left to the required check.
func validateQuantity(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Sprintf("value '%s' is not a valid integer", value)
	}
	if n <= 0 {
		return fmt.Sprintf("quantity %d is not positive", n)
	}

	return ""
}

func missingColumns(record types.Record) []string {
	var missing []string
	for _, field := range requiredFields {
		if _, ok := record[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats findings for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
