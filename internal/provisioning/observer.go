package provisioning

import "log"

// Observer receives progress updates during a workflow. Implementations
// must tolerate total == 0, used for steps whose extent is not yet known
// (e.g. "fetching roster").
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...interface{})

	// Progress reports that `completed` of `total` discrete steps are done.
	Progress(completed, total int, message string)
}

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(completed, total int, message string) {
	log.Printf("[%d/%d] %s", completed, total, message)
}

// NopObserver discards all updates. Useful in tests.
type NopObserver struct{}

// Printf implements Observer.
func (NopObserver) Printf(string, ...interface{}) {}

// Progress implements Observer.
func (NopObserver) Progress(int, int, string) {}
