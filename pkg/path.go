package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// ConfigName is the base name of the configuration file.
const ConfigName = "config.yaml"

// Prefix returns the base name used for the configuration and cache
// directories and for environment variable identifiers.
//
// Prefix is the base name of the executable file, with these substitutions:
//   - "__debug_bin" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return prefix(id)
	},
)

func prefix(exe string) string {
	id := regexp.MustCompile(`^\.+`).ReplaceAllString(filepath.Base(exe), "")
	id = strings.TrimSuffix(id, filepath.Ext(id))
	id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, Name)

	if id == "" {
		return Name
	}

	return id
}

// ConfigDir returns the configuration directory, rooted at
// $XDG_CONFIG_HOME (or its platform equivalent).
func ConfigDir() string { return filepath.Join(xdg.ConfigHome, Prefix()) }

// CacheDir returns the directory for transient files, rooted at
// $XDG_CACHE_HOME (or its platform equivalent).
func CacheDir() string { return filepath.Join(xdg.CacheHome, Prefix()) }

// ConfigFile returns the path of the default configuration file.
func ConfigFile() string { return filepath.Join(ConfigDir(), ConfigName) }
