// Package profiling mounts the Go runtime profilers on an Echo router.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const bytesPerMB = 1024 * 1024

var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Register adds /debug/pprof/* and /debug/memory to e.
func Register(e *echo.Echo) {
	g := e.Group("/debug/pprof")
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	for _, name := range namedProfiles {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}

	e.GET("/debug/memory", func(c echo.Context) error {
		return c.JSON(http.StatusOK, ReadMemoryStats())
	})
}

type MemoryStats struct {
	AllocMB      float64   `json:"allocMb"`
	TotalAllocMB float64   `json:"totalAllocMb"`
	SysMB        float64   `json:"sysMb"`
	HeapInUseMB  float64   `json:"heapInUseMb"`
	HeapObjects  uint64    `json:"heapObjects"`
	NumGC        uint32    `json:"numGc"`
	Goroutines   int       `json:"goroutines"`
	Timestamp    time.Time `json:"timestamp"`
}

func ReadMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      float64(m.Alloc) / bytesPerMB,
		TotalAllocMB: float64(m.TotalAlloc) / bytesPerMB,
		SysMB:        float64(m.Sys) / bytesPerMB,
		HeapInUseMB:  float64(m.HeapInuse) / bytesPerMB,
		HeapObjects:  m.HeapObjects,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		Timestamp:    time.Now().UTC(),
	}
}
