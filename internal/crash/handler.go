package crash

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"support-relay/internal/logger"
)

// RecoverWithStack recovers a panic and logs it with the stack trace. Use it
// directly in a defer.
func RecoverWithStack(moduleName string) {
	if r := recover(); r != nil {
		reportPanic("PANIC", moduleName, r)
	}
}

// RecoverWithStackAndExit is RecoverWithStack for main: it exits with a
// non-zero status after logging.
func RecoverWithStackAndExit(moduleName string) {
	if r := recover(); r != nil {
		reportPanic("FATAL PANIC", moduleName, r)
		logger.Sync()
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}
}

func reportPanic(kind, moduleName string, r interface{}) {
	stack := debug.Stack()

	logger.Errorf("%s in %s: %v", kind, moduleName, r)
	logger.Errorf("Stack trace:\n%s", string(stack))

	// stderr as well, so container logs show it
	fmt.Fprintf(os.Stderr, "[%s] %s - %s: %v\n", kind, time.Now().Format("2006-01-02 15:04:05"), moduleName, r)
	fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", string(stack))

	logRuntimeInfo()
}

// SafeGoroutine starts fn in a goroutine that survives panics.
func SafeGoroutine(name string, fn func()) {
	go func() {
		defer RecoverWithStack(fmt.Sprintf("goroutine-%s", name))
		fn()
	}()
}

func logRuntimeInfo() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := fmt.Sprintf(`
Runtime Information:
- Go version: %s
- Number of CPUs: %d
- Number of goroutines: %d
- Memory stats:
  - Heap allocated: %d KB
  - Heap in use: %d KB
  - Stack in use: %d KB
  - Num GC: %d
`,
		runtime.Version(),
		runtime.NumCPU(),
		runtime.NumGoroutine(),
		bToKb(m.HeapAlloc),
		bToKb(m.HeapInuse),
		bToKb(m.StackInuse),
		m.NumGC,
	)

	logger.Error(info)
	fmt.Fprint(os.Stderr, info)
}

func bToKb(b uint64) uint64 {
	return b / 1024
}

// SetupCrashHandler turns faults on unexpected addresses into panics so they
// are recovered and logged.
func SetupCrashHandler() {
	debug.SetPanicOnFault(true)
}
