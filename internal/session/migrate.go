package session

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// ErrInvalidSession is wrapped by every shape or decoding failure.
var ErrInvalidSession = errors.Base("invalid session")

// legacyEntriesField is the name older versions used for fileEntries.
const legacyEntriesField = "fileDataList"

// Recognised option fields. Anything else in a stored options object is
// dropped by Migrate.
const (
	optionCondition      = "condition"
	optionIgnoreEdition  = "ignoreEdition"
	optionForceCondition = "forceCondition"
)

// Parse decodes a stored session document, checks its shape and migrates it.
//
// REQUIRED SHAPE:
//   - version: non-empty string
//   - fileEntries (or legacy fileDataList): array
//   - options: object
//   - timestamp: number
func Parse(ctx context.Context, raw []byte) (*SessionData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidSession, err)
	}
	if fields == nil {
		return nil, errors.WithDetails(ErrInvalidSession, "reason", "document is null")
	}

	if _, ok := fields["fileEntries"]; !ok {
		if legacy, ok := fields[legacyEntriesField]; ok {
			fields["fileEntries"] = legacy
		}
	}

	if err := validateShape(fields); err != nil {
		return nil, err
	}

	return Migrate(ctx, fields)
}

func validateShape(fields map[string]json.RawMessage) error {
	var version string
	if err := json.Unmarshal(fields["version"], &version); err != nil || version == "" {
		return errors.WithDetails(ErrInvalidSession, "field", "version")
	}
	if kind(fields["fileEntries"]) != '[' {
		return errors.WithDetails(ErrInvalidSession, "field", "fileEntries")
	}
	if kind(fields["options"]) != '{' {
		return errors.WithDetails(ErrInvalidSession, "field", "options")
	}
	if k := kind(fields["timestamp"]); k != '-' && (k < '0' || k > '9') {
		return errors.WithDetails(ErrInvalidSession, "field", "timestamp")
	}
	return nil
}

// kind returns the first significant byte of a JSON value, 0 when absent.
func kind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// Migrate converts a shape-checked document into the current SessionData.
//
// MIGRATION STEPS:
//   - Option fields the current schema does not know (e.g. the deprecated
//     addToList flag) are dropped.
//   - Missing option fields take their default value.
//   - Duplicate file ids keep their first occurrence.
//
// Entries without an id (including null array elements) make the whole
// document invalid.
//
// Migrate never fails on well-formed outdated input. It fails when a value
// cannot be decoded into the current types, including unknown condition codes.
func Migrate(ctx context.Context, fields map[string]json.RawMessage) (*SessionData, error) {
	logger := zerolog.Ctx(ctx)

	data := &SessionData{}

	if err := json.Unmarshal(fields["version"], &data.Version); err != nil {
		return nil, errors.Errorf("%w: version: %s", ErrInvalidSession, err)
	}

	var timestamp float64
	if err := json.Unmarshal(fields["timestamp"], &timestamp); err != nil {
		return nil, errors.Errorf("%w: timestamp: %s", ErrInvalidSession, err)
	}
	data.Timestamp = int64(timestamp)

	options, stripped, err := migrateOptions(fields["options"])
	if err != nil {
		return nil, err
	}
	if len(stripped) > 0 {
		logger.Info().Strs("fields", stripped).Msg("removed unrecognised option fields from stored session")
	}
	data.Options = options

	var entries []types.FileEntry
	if err := json.Unmarshal(fields["fileEntries"], &entries); err != nil {
		return nil, errors.Errorf("%w: fileEntries: %s", ErrInvalidSession, err)
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, errors.WithDetails(ErrInvalidSession, "field", "fileEntries", "index", i)
		}
	}
	data.FileEntries = dedupeEntries(ctx, entries)

	return data, nil
}

func migrateOptions(raw json.RawMessage) (types.ConversionOptions, []string, error) {
	options := types.DefaultOptions()

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return options, nil, errors.Errorf("%w: options: %s", ErrInvalidSession, err)
	}

	var stripped []string
	for name, value := range stored {
		var err error
		switch name {
		case optionCondition:
			err = json.Unmarshal(value, &options.Condition)
		case optionIgnoreEdition:
			err = json.Unmarshal(value, &options.IgnoreEdition)
		case optionForceCondition:
			err = json.Unmarshal(value, &options.ForceCondition)
		default:
			stripped = append(stripped, name)
		}
		if err != nil {
			return options, nil, errors.WithDetails(
				errors.Errorf("%w: options.%s: %s", ErrInvalidSession, name, err),
				"field", name,
			)
		}
	}
	sort.Strings(stripped)

	return options, stripped, nil
}

func dedupeEntries(ctx context.Context, entries []types.FileEntry) []types.FileEntry {
	if entries == nil {
		return []types.FileEntry{}
	}

	seen := make(map[string]bool, len(entries))
	out := make([]types.FileEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			zerolog.Ctx(ctx).Warn().Str("file_id", e.ID).Msg("dropping duplicate file id from stored session")
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}
