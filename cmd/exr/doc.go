// Command exr parses, resolves, and evaluates .exr macro-expansion
// sources.
//
// # Usage
//
//	exr expand source.exr
//	exr check source.exr --report report.yaml
//
// # Logging
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: json or text
//   - --log-pretty: colorized level tags via lipgloss
//
// # Profiling
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o exr ./cmd/exr
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread, trace
//   - --pprof-dir: profile output directory (default ~/.cache/exr/pprof)
package main
