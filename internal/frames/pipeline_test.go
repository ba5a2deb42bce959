package frames

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipelineBoundedConcurrency(t *testing.T) {
	var (
		maxObserved atomic.Int64
		current     atomic.Int64
		delivered   atomic.Int64
	)
	release := make(chan struct{})

	encode := func(raw []byte) ([]byte, error) {
		n := current.Add(1)
		for {
			prev := maxObserved.Load()
			if n <= prev || maxObserved.CompareAndSwap(prev, n) {
				break
			}
		}
		<-release
		current.Add(-1)
		return raw, nil
	}

	p := NewPipeline(8, encode, func([]byte) { delivered.Add(1) }, nil)

	for i := 0; i < 100; i++ {
		p.Submit([]byte{byte(i)})
	}

	// Give the eight workers time to start; nothing beyond the budget
	// may be running, and everything else collapsed into one slot.
	require.Eventually(t, func() bool { return current.Load() == 8 }, time.Second, time.Millisecond)
	require.LessOrEqual(t, maxObserved.Load(), int64(8))

	close(release)

	// 8 running + at most 1 parked frame survive; the rest were
	// displaced by latest-wins.
	require.Eventually(t, func() bool { return p.InFlight() == 0 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		n := delivered.Load()
		return n >= 8 && n <= 9
	}, time.Second, time.Millisecond)
	require.LessOrEqual(t, maxObserved.Load(), int64(8))
}

func TestPipelineLatestWins(t *testing.T) {
	var mu sync.Mutex
	var got [][]byte
	release := make(chan struct{})

	encode := func(raw []byte) ([]byte, error) {
		<-release
		return raw, nil
	}

	p := NewPipeline(1, encode, func(b []byte) {
		mu.Lock()
		got = append(got, b)
		mu.Unlock()
	}, nil)

	p.Submit([]byte{1}) // occupies the only slot
	p.Submit([]byte{2}) // parks
	p.Submit([]byte{3}) // displaces 2

	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []byte{1}, got[0])
	require.Equal(t, []byte{3}, got[1], "pending slot must hold the newest frame only")
}

func TestPipelineEncodeErrorRestoresSlot(t *testing.T) {
	var delivered atomic.Int64
	calls := atomic.Int64{}

	encode := func(raw []byte) ([]byte, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return raw, nil
	}

	p := NewPipeline(1, encode, func([]byte) { delivered.Add(1) }, nil)

	p.Submit([]byte{1})
	require.Eventually(t, func() bool { return p.InFlight() == 0 }, time.Second, time.Millisecond)

	p.Submit([]byte{2})
	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, time.Millisecond)
}

func TestJPEGEncoderProducesFrames(t *testing.T) {
	encode := JPEGEncoder(75)

	raw := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < len(raw); i += 4 {
		raw[i] = 0x80
		raw[i+3] = 0xff
	}

	out, err := encode(raw)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// JPEG SOI marker.
	require.Equal(t, []byte{0xff, 0xd8}, out[:2])

	_, err = encode(make([]byte, 10))
	require.Error(t, err, "short framebuffer must be rejected")
}
