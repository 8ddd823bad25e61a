// =============================================================================
// ligaconv - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the CLI, including:
//   - Input discovery (paths, directories and doublestar globs)
//   - Output file naming
//   - Output writing
//
// INPUT RESOLUTION:
//   - Relative arguments are resolved against InputDir
//   - A directory expands to every .csv file below it
//   - A glob ("**/*.csv", "exports/2024-*.csv") expands to its matching files
//   - A plain file is passed through as-is, whatever its extension; the
//     ingestion store decides what to do with non-csv files
//
// =============================================================================

package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is returned for a plain path that does not exist.
var ErrNotFound = errors.Base("input not found")

// csvPattern is used when a directory is given as input.
const csvPattern = "**/*.csv"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the CLI.
type FileManager struct {
	// InputDir is the base for relative input arguments.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return errors.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// ExpandInputs resolves command line arguments into file paths.
//
// PARAMETERS:
//   - args: Paths, directories or glob patterns.
//
// RETURNS:
//   - The matching file paths, in argument order, each listed once.
//   - An error if a pattern is malformed or a plain path does not exist.
func (fm *FileManager) ExpandInputs(args []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, arg := range args {
		path := fm.resolve(arg)

		if hasMeta(arg) {
			matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
			if err != nil {
				return nil, errors.Errorf("invalid pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WithDetails(ErrNotFound, "path", arg)
			}
			return nil, errors.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		matches, err := fm.DiscoverInputFiles(path)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			add(m)
		}
	}

	return result, nil
}

// DiscoverInputFiles returns every .csv file below dir, recursively.
func (fm *FileManager) DiscoverInputFiles(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), csvPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("failed to scan directory %s: %w", dir, err)
	}

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return files, nil
}

func (fm *FileManager) resolve(arg string) string {
	if filepath.IsAbs(arg) || fm.InputDir == "" {
		return arg
	}
	return filepath.Join(fm.InputDir, arg)
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, always ending in .txt.
//
// EXAMPLE:
//   format: "liga_{timestamp}_{uuid}.txt"
//   output: "liga_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.txt"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".txt") {
		result += ".txt"
	}

	return result
}

// =============================================================================
// OUTPUT WRITING
// =============================================================================

// WriteOutput writes content to name inside OutputDir and returns the path.
func (fm *FileManager) WriteOutput(name, content string) (string, error) {
	if err := fm.EnsureOutputDir(); err != nil {
		return "", err
	}

	path := filepath.Join(fm.OutputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Errorf("failed to write output file: %w", err)
	}

	return path, nil
}
