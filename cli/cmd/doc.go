// Package cmd implements the stencil subcommands.
//
// Every command reads one expression, given either as an argument or with
// --file, and writes its result to the writer bound by the CLI:
//
//	stencil compile 'user.name|upper'
//	stencil eval --var user='{name: ann}' 'user.name|upper'
//	stencil ast --format yaml 'a ?: b'
//	stencil symbols --kind filter up
//	stencil repl
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"
)
