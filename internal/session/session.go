// =============================================================================
// ligaconv - Session Store
// =============================================================================
//
// This module makes the work session durable. A session is the tracked file
// list plus the conversion options, written as one JSON document under a
// single storage key:
//
//   {
//     "version":     "1.0.0",
//     "fileEntries": [ {id, name, records, included, isRestored}, ... ],
//     "options":     {condition, ignoreEdition, forceCondition},
//     "timestamp":   1718000000000
//   }
//
// FAILURE POLICY:
//   Persistence is best effort. Save and Clear log storage failures and
//   return nothing. Load treats a missing key, a storage failure, invalid
//   JSON and a document of the wrong shape all the same way: no session.
//
// =============================================================================

package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/ligaconv/internal/storage"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Defaults used when the configuration leaves the fields empty.
const (
	DefaultKey     = "mtg-converter-session"
	DefaultVersion = "1.0.0"
)

// Config names the storage key and the schema version written by Save.
type Config struct {
	Key     string
	Version string
}

// SessionData is one persisted session.
type SessionData struct {
	Version     string                  `json:"version"`
	FileEntries []types.FileEntry       `json:"fileEntries"`
	Options     types.ConversionOptions `json:"options"`
	Timestamp   int64                   `json:"timestamp"`
}

// Store reads and writes sessions through a storage.Storage.
type Store struct {
	storage storage.Storage
	config  Config
	now     func() time.Time
}

// New creates a session store. Empty config fields fall back to the defaults.
func New(s storage.Storage, config Config) *Store {
	if config.Key == "" {
		config.Key = DefaultKey
	}
	if config.Version == "" {
		config.Version = DefaultVersion
	}
	return &Store{
		storage: s,
		config:  config,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// Save writes the current session. Failures are logged, never returned.
func (s *Store) Save(ctx context.Context, entries []types.FileEntry, options types.ConversionOptions) {
	logger := zerolog.Ctx(ctx)

	if entries == nil {
		entries = []types.FileEntry{}
	}

	data := SessionData{
		Version:     s.config.Version,
		FileEntries: entries,
		Options:     options,
		Timestamp:   s.now().UnixMilli(),
	}

	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error().Err(err).Msg("error encoding session")
		return
	}

	if err := s.storage.Set(ctx, s.config.Key, string(raw)); err != nil {
		logger.Error().Err(err).Str("key", s.config.Key).Msg("error saving session to storage")
		return
	}

	logger.Debug().Str("key", s.config.Key).Int("files", len(entries)).Msg("session saved")
}

// Load returns the stored session, or nil when there is no usable one.
func (s *Store) Load(ctx context.Context) *SessionData {
	logger := zerolog.Ctx(ctx)

	raw, ok, err := s.storage.Get(ctx, s.config.Key)
	if err != nil {
		logger.Error().Err(err).Str("key", s.config.Key).Msg("error reading session from storage")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	data, err := Parse(ctx, []byte(raw))
	if err != nil {
		logger.Warn().Err(err).Str("key", s.config.Key).Msg("stored session is not usable")
		return nil
	}

	if data.Version != s.config.Version {
		logger.Info().
			Str("stored_version", data.Version).
			Str("current_version", s.config.Version).
			Msg("loaded session from another schema version")
	}

	return data
}

// HasStoredSession reports whether Load would return a session.
func (s *Store) HasStoredSession(ctx context.Context) bool {
	return s.Load(ctx) != nil
}

// Clear removes the stored session. Failures are logged, never returned.
func (s *Store) Clear(ctx context.Context) {
	if err := s.storage.Remove(ctx, s.config.Key); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", s.config.Key).Msg("error clearing session from storage")
	}
}
