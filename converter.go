package revista

import (
	"sync"
	"time"
)

// Compile-time interface implementation checks.
var (
	_ pageSource    = (*pdfSource)(nil)
	_ screenshotter = (*rodScreenshotter)(nil)
	_ Logger        = NopLogger{}
)

// Converter runs the document/PDF conversions: Render, Import, Detect and
// Thumbnail. Create with NewConverter and call Close when done.
//
// Render, Import and Detect keep no state between calls and may run
// concurrently. Thumbnail shares one lazily started browser per Converter.
type Converter struct {
	cfg   converterConfig
	log   Logger
	store AssetStore
	open  sourceOpener
	now   func() time.Time

	mu    sync.Mutex
	shots screenshotter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithAssetStore, WithLimits, WithLogger).
// Returns an error matching ErrInvalidLimits if the limits are out of range.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:    defaultTimeout,
			limits:     DefaultLimits(),
			thumbWidth: defaultThumbWidth,
		},
		log:  NopLogger{},
		open: openPDFSource,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.limits.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Limits returns the effective limits.
func (c *Converter) Limits() Limits {
	return c.cfg.limits
}

// Close releases the thumbnail browser, if one was started.
func (c *Converter) Close() error {
	c.mu.Lock()
	shots := c.shots
	c.shots = nil
	c.mu.Unlock()

	if shots != nil {
		return shots.Close()
	}
	return nil
}
