package sim

import "sync"

// Monitor counts bit and frame errors and runs the check handlers
// registered by lane modules (e.g. interleaver refresh) between trials.
// Whether to keep simulating is decided by its owner.
type Monitor struct {
	mu          sync.Mutex
	bitErrors   int
	frameErrors int
	frames      int
	handlers    []func()
}

func NewMonitor() *Monitor { return &Monitor{} }

// AddCheckHandler registers fn to run on every Check.
func (m *Monitor) AddCheckHandler(fn func()) {
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	m.mu.Unlock()
}

// Record adds the outcome of n frames.
func (m *Monitor) Record(frames, frameErrors, bitErrors int) {
	m.mu.Lock()
	m.frames += frames
	m.frameErrors += frameErrors
	m.bitErrors += bitErrors
	m.mu.Unlock()
}

// Check runs the registered handlers in registration order.
func (m *Monitor) Check() {
	m.mu.Lock()
	hs := append([]func(){}, m.handlers...)
	m.mu.Unlock()
	for _, fn := range hs {
		fn()
	}
}

// Counts returns frames, frame errors and bit errors seen so far.
func (m *Monitor) Counts() (frames, frameErrors, bitErrors int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames, m.frameErrors, m.bitErrors
}
