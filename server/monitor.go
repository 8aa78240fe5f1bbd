package server

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"runtime/pprof"
)

// runtimeMonitor writes runtime information about the server to http responses.
type runtimeMonitor struct {
	hasTLS bool
}

// ServeHTTP writes the memory stats and goroutine information of the server to the response.
func (m runtimeMonitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := new(runtime.MemStats)
	runtime.ReadMemStats(stats)
	p := pprof.Lookup("goroutine")
	writeMemoryStats(w, stats)
	fmt.Fprintln(w)
	m.writeGoroutineExpectations(w)
	fmt.Fprintln(w)
	writeGoroutineStackTraces(w, p)
}

// writeMemoryStats writes the memory runtime statistics of the server.
func writeMemoryStats(w io.Writer, stats *runtime.MemStats) {
	fmt.Fprintln(w, "--- Memory Stats ---")
	fmt.Fprintln(w, "Alloc (bytes on heap)", stats.Alloc)
	fmt.Fprintln(w, "TotalAlloc (total heap size)", stats.TotalAlloc)
	fmt.Fprintln(w, "Sys (bytes used to run server)", stats.Sys)
	fmt.Fprintln(w, "Live object count (Mallocs - Frees)", stats.Mallocs-stats.Frees)
}

// writeGoroutineExpectations writes a message about the expected goroutines.
func (m runtimeMonitor) writeGoroutineExpectations(w io.Writer) {
	fmt.Fprintln(w, "--- Goroutine Expectations ---")
	switch {
	case m.hasTLS:
		fmt.Fprintln(w, "Twelve (12) goroutines are expected on an idling server.")
		fmt.Fprintln(w, "Note that the first two goroutines create extra threads for each tls connection.")
		fmt.Fprintln(w, "* a goroutine listening for interrupt/termination signals so the server can stop gracefully")
		fmt.Fprintln(w, "* a goroutine to handle tls connections")
		fmt.Fprintln(w, "* a goroutine to run the https (tls) server")
	default:
		fmt.Fprintln(w, "Nine (9) goroutines are expected on an idling server.")
	}
	fmt.Fprintln(w, "* a goroutine to run the http server")
	fmt.Fprintln(w, "* a goroutine to open new sql database connections")
	fmt.Fprintln(w, "* a goroutine to reset existing sql database connections")
	fmt.Fprintln(w, "* a goroutine to serve http/2 requests")
	fmt.Fprintln(w, "* a goroutine to run the lobby")
	fmt.Fprintln(w, "* a goroutine to route messages between sockets and games")
	fmt.Fprintln(w, "* a goroutine to route messages between games and the lobby")
	fmt.Fprintln(w, "* a goroutine to run the main procedure")
	fmt.Fprintln(w, "* a goroutine to write profiling information about goroutines")
	fmt.Fprintln(w, "Each player in the lobby should have two (2) goroutines to read and write websocket messages.")
	fmt.Fprintln(w, "Each game in the lobby runs on a single (1) goroutine.")
}

// writeGoroutineStackTraces writes the goroutine runtime profile's stack traces.
func writeGoroutineStackTraces(w io.Writer, p *pprof.Profile) {
	fmt.Fprintln(w, "--- Goroutine Stack Traces ---")
	p.WriteTo(w, 1)
}
