package timedtask

type config struct {
	clock Clock
}

// Option configures a Task.
type Option func(*config)

// WithClock sets the time source. A nil clock keeps SystemClock.
func WithClock(c Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}
