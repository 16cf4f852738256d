// Package profile provides optional runtime profiling for stencil.
//
// Profiling wraps [github.com/pkg/profile] and must be enabled at build time
// with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace:
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/stencil"}
//	defer p.Start().Stop()
//
// Profile data is written to Path as <mode>.pprof and can be inspected with
//
//	go tool pprof -http=: /tmp/stencil/cpu.pprof
//
// The stencil command exposes the profiler through --pprof-mode and
// --pprof-dir; the default directory is the pprof subdirectory of the user
// cache directory.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
