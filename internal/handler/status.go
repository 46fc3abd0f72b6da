package handler

import (
	"runtime"
	"sync/atomic"
	"time"

	"support-relay/internal/logger"
	"support-relay/internal/relay"
)

// processing statistics
var (
	totalMessagesProcessed int64
	totalDuplicates        int64
	totalErrors            int64
	totalTimeouts          int64
	startTime              = time.Now()

	outcomeCounters [relay.OutcomeFailed + 1]int64
)

func incrementCounter(counter *int64) {
	atomic.AddInt64(counter, 1)
}

func recordOutcome(o relay.Outcome) {
	if o >= 0 && int(o) < len(outcomeCounters) {
		incrementCounter(&outcomeCounters[o])
	}
	if o == relay.OutcomeFailed {
		incrementCounter(&totalErrors)
	}
}

// GetProcessingStats returns the handler counters and runtime figures.
func GetProcessingStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := map[string]interface{}{
		"uptime_seconds":          int64(time.Since(startTime).Seconds()),
		"total_messages":          atomic.LoadInt64(&totalMessagesProcessed),
		"total_duplicates":        atomic.LoadInt64(&totalDuplicates),
		"total_errors":            atomic.LoadInt64(&totalErrors),
		"total_timeouts":          atomic.LoadInt64(&totalTimeouts),
		"active_handlers":         GetActiveHandlersCount(),
		"max_concurrent_messages": cap(messageProcessingSemaphore),
		"memory_usage_mb":         bToMb(m.Alloc),
		"sys_memory_mb":           bToMb(m.Sys),
		"gc_runs":                 m.NumGC,
		"goroutines":              runtime.NumGoroutine(),
	}
	for i := range outcomeCounters {
		if n := atomic.LoadInt64(&outcomeCounters[i]); n > 0 {
			stats["outcome_"+relay.Outcome(i).String()] = n
		}
	}
	return stats
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// LogProcessingStats logs the counters every interval until stop is closed.
func LogProcessingStats(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		stats := GetProcessingStats()
		logger.Infof("Processing stats: %+v", stats)

		if active := stats["active_handlers"].(int); active >= cap(messageProcessingSemaphore) {
			logger.Warningf("All %d handler slots busy", active)
		}

		totalMessages := stats["total_messages"].(int64)
		errors := stats["total_errors"].(int64)
		if totalMessages > 0 && float64(errors)/float64(totalMessages) > 0.1 {
			logger.Warningf("High error rate: %.2f%% (%d errors out of %d messages)",
				float64(errors)/float64(totalMessages)*100, errors, totalMessages)
		}
	}
}
