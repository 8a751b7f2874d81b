package revista

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() *Converter
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

func newTestPool(t *testing.T, n int) *ConverterPool {
	t.Helper()

	pool, err := NewConverterPool(n, WithAssetStore(NewMemoryAssetStore()))
	if err != nil {
		t.Fatalf("NewConverterPool() error = %v", err)
	}
	return pool
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{name: "explicit takes priority", workers: 4, want: 4},
		{name: "explicit=1 for sequential", workers: 1, want: 1},
		{name: "explicit can exceed max", workers: 16, want: 16},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -5,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestNewConverterPool_InvalidOptions(t *testing.T) {
	t.Parallel()

	bad := DefaultLimits()
	bad.MaxPages = 0

	_, err := NewConverterPool(2, WithLimits(bad))
	if !errors.Is(err, ErrInvalidLimits) {
		t.Errorf("NewConverterPool() error = %v, want ErrInvalidLimits", err)
	}
}

func TestConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := newTestPool(t, tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	defer pool.Close()

	c1 := pool.Acquire()
	c2 := pool.Acquire()
	if c1 == nil || c2 == nil {
		t.Fatal("Acquire() returned nil")
	}
	if c1 == c2 {
		t.Error("expected different converter instances")
	}

	pool.Release(c1)
	if c3 := pool.Acquire(); c3 != c1 {
		t.Error("expected to get back the released converter")
	}
	pool.Release(c1)
	pool.Release(c2)
}

func TestConverterPool_SharesOptions(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxPages = 12
	pool, err := NewConverterPool(2, WithLimits(limits))
	if err != nil {
		t.Fatalf("NewConverterPool() error = %v", err)
	}
	defer pool.Close()

	c1 := pool.Acquire()
	c2 := pool.Acquire()
	defer pool.Release(c1)
	defer pool.Release(c2)

	for i, c := range []*Converter{c1, c2} {
		if got := c.Limits().MaxPages; got != 12 {
			t.Errorf("converter %d MaxPages = %d, want 12", i, got)
		}
	}
}

func TestConverterPool_HighContention(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	defer pool.Close()

	var wg sync.WaitGroup
	goroutines := 50
	iterations := 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c := pool.Acquire()
				time.Sleep(time.Duration(j%3) * time.Millisecond)
				pool.Release(c)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	c := pool.Acquire()

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after close is a no-op.
	pool.Release(c)

	if got := pool.Acquire(); got != nil {
		t.Errorf("Acquire() after Close = %p, want nil", got)
	}
}

func TestConverterPool_CloseWithIdleConverters(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	c := pool.Acquire()
	pool.Release(c)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := pool.Acquire(); got != nil {
		t.Errorf("Acquire() after Close = %p, want nil", got)
	}
}

func TestConverterPool_CloseWakesAcquire(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	held := pool.Acquire()
	if held == nil {
		t.Fatal("Acquire() returned nil")
	}

	got := make(chan *Converter, 1)
	go func() {
		got <- pool.Acquire()
	}()

	time.Sleep(20 * time.Millisecond)
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case c := <-got:
		if c != nil {
			t.Errorf("blocked Acquire() = %p, want nil", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close() did not wake a blocked Acquire()")
	}
}

func TestConverterPool_ReleaseDuringClose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		pool := newTestPool(t, 4)
		convs := make([]*Converter, 0, 4)
		for j := 0; j < 4; j++ {
			convs = append(convs, pool.Acquire())
		}

		var wg sync.WaitGroup
		for _, c := range convs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pool.Release(c)
			}()
		}
		if err := pool.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		wg.Wait()

		if got := pool.Acquire(); got != nil {
			t.Errorf("Acquire() after Close = %p, want nil", got)
		}
	}
}
