// Package monitor exposes lightweight ops endpoints: process stats and
// the application log. Both sit outside /api/v1 and are guarded by a
// shared token rather than a user session so they work from curl and
// uptime probes.
package monitor

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

func authorized(c *gin.Context) bool {
	token := os.Getenv("MONITOR_TOKEN")
	return token != "" && c.Query("token") == token
}

// RegisterMonitorRoutes wires /monitor/stats and /monitor/logs.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/monitor/stats", func(c *gin.Context) {
		if !authorized(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		c.JSON(http.StatusOK, gin.H{
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"heap_alloc":     mem.HeapAlloc,
			"heap_sys":       mem.HeapSys,
			"num_gc":         mem.NumGC,
		})
	})

	router.GET("/monitor/logs", func(c *gin.Context) {
		if !authorized(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}
