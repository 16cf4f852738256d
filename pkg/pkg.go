//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the stencil module embedded at build
// time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It appears in help text and default config
	// paths.
	Name = "stencil"
	// Description is a short summary used in help output.
	Description = "Template expression compiler"
)
