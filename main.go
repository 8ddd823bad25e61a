// =============================================================================
// ligaconv - Main Entry Point
// =============================================================================
//
// ligaconv converts MTG collection exports into the LigaMagic list format and
// keeps the set of tracked files in a session between runs.
//
// USAGE:
//   ligaconv add <files>    - Track collection exports
//   ligaconv list           - Show tracked files and options
//   ligaconv render         - Print the converted list
//   ligaconv version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Core logic (parsing, ingestion, conversion, sessions)
//   - pkg/       : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/ligaconv/cmd"
)

func main() {
	cmd.Execute()
}
