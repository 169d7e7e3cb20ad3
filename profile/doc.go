// Package profile provides optional runtime profiling for the simpleproc
// command, built on [github.com/pkg/profile].
//
// Profiling must be enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// handle, so callers need no build constraints of their own.
//
// # Modes
//
//   - allocs, heap, mem: memory allocation profiles
//   - block, mutex: synchronization contention
//   - clock, cpu: wall-clock and CPU time
//   - goroutine, thread: goroutine and OS thread creation
//   - trace: execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line:
//
//	simpleproc --pprof-mode cpu -o out templates/
//	go tool pprof -http=: ~/.cache/simpleproc/pprof/cpu.pprof
//
// With the tag set the package also imports [net/http/pprof], registering
// its handlers on [net/http.DefaultServeMux].
package profile
