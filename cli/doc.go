// Package cli contains the command line interface for stencil.
//
// # Usage
//
// Expressions are evaluated by default, so the eval command may be omitted:
//
//	stencil '1 + 2 * 3'
//	stencil -v name=ann 'name|upper'
//	stencil compile 'items|join(", ")'
//	stencil ast --format=yaml 'a.b[0]'
//	stencil symbols upp
//	stencil repl
//
// # Configuration
//
// Flag defaults are read from a YAML file in the user configuration
// directory (see [pkg.ConfigFile]). Nested keys are joined with "-", and a
// command's flags may be nested under the command name:
//
//	log:
//	  level: info
//	string-concat: true
//	eval:
//	  output: yaml
//
// The init command writes the current flag values to this file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stencil .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/stencil/pprof)
package cli
