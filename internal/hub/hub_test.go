package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// fakeSocket records written messages and blocks reads until closed.
type fakeSocket struct {
	mu      sync.Mutex
	texts   [][]byte
	binarys [][]byte
	failAll bool
	closed  chan struct{}
	once    sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{closed: make(chan struct{})}
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("write failed")
	}
	cp := append([]byte(nil), data...)
	if messageType == binaryMessage {
		f.binarys = append(f.binarys, cp)
	} else {
		f.texts = append(f.texts, cp)
	}
	return nil
}

func (f *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeSocket) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSocket) textMessages() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.texts))
	for _, raw := range f.texts {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func testVote(block uint64, action model.Action) model.Vote {
	return model.Vote{
		Player:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Action:     action,
		Block:      block,
		TxHash:     common.HexToHash("0xaa"),
		ObservedAt: time.Unix(1700000000, 0),
	}
}

func TestFrameSpectatorLifecycle(t *testing.T) {
	h := New(160, 144, 100, 50, nil)

	ws := newFakeSocket()
	done := make(chan struct{})
	go func() {
		h.ServeFrames(ws)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.ViewerCount() == 1 }, time.Second, time.Millisecond)

	msgs := ws.textMessages()
	require.GreaterOrEqual(t, len(msgs), 2)
	require.Equal(t, "screenInfo", msgs[0]["type"])
	require.EqualValues(t, 160, msgs[0]["width"])
	require.Equal(t, "viewerCount", msgs[1]["type"])
	require.EqualValues(t, 1, msgs[1]["count"])

	h.BroadcastFrame([]byte{0xff, 0xd8, 1, 2})
	ws.mu.Lock()
	binCount := len(ws.binarys)
	ws.mu.Unlock()
	require.Equal(t, 1, binCount)

	ws.Close()
	<-done
	require.Equal(t, 0, h.ViewerCount())
}

func TestEventSpectatorHydration(t *testing.T) {
	h := New(160, 144, 100, 50, nil)

	h.BroadcastVote(testVote(3, model.ActionA))
	h.BroadcastGameState(model.GameState{Location: "Pallet Town"})

	ws := newFakeSocket()
	go h.ServeEvents(ws)

	require.Eventually(t, func() bool { return len(ws.textMessages()) >= 3 }, time.Second, time.Millisecond)

	msgs := ws.textMessages()
	require.Equal(t, "screenInfo", msgs[0]["type"])
	require.Equal(t, "recentHistory", msgs[1]["type"])
	require.Equal(t, "gameState", msgs[2]["type"])

	history := msgs[1]
	votes := history["votes"].([]any)
	require.Len(t, votes, 1)

	ws.Close()
}

func TestEventBroadcastOrder(t *testing.T) {
	h := New(160, 144, 100, 50, nil)

	ws := newFakeSocket()
	go h.ServeEvents(ws)
	require.Eventually(t, func() bool { return len(ws.textMessages()) >= 2 }, time.Second, time.Millisecond)

	h.BroadcastVote(testVote(1, model.ActionUp))
	h.BroadcastResult(model.WindowResult{
		WindowID: 0, StartBlock: 0, EndBlock: 4,
		Tallies: map[model.Action]uint32{model.ActionUp: 1}, Winner: model.ActionUp, TotalVotes: 1,
	})

	require.Eventually(t, func() bool { return len(ws.textMessages()) == 4 }, time.Second, time.Millisecond)

	msgs := ws.textMessages()
	require.Equal(t, "vote", msgs[2]["type"])
	require.Equal(t, "windowResult", msgs[3]["type"])

	ws.Close()
}

func TestRingEviction(t *testing.T) {
	h := New(160, 144, 3, 50, nil)

	for block := uint64(0); block < 5; block++ {
		h.BroadcastVote(testVote(block, model.ActionB))
	}

	recent := h.RecentVotes()
	require.Len(t, recent, 3)
	require.EqualValues(t, 2, recent[0].Block, "oldest entries are evicted first")
	require.EqualValues(t, 4, recent[2].Block)
}

func TestStuckSpectatorDropped(t *testing.T) {
	h := New(160, 144, 100, 50, nil)

	ws := newFakeSocket()
	done := make(chan struct{})
	go func() {
		h.ServeFrames(ws)
		close(done)
	}()
	require.Eventually(t, func() bool { return h.ViewerCount() == 1 }, time.Second, time.Millisecond)

	ws.mu.Lock()
	ws.failAll = true
	ws.mu.Unlock()

	h.BroadcastFrame([]byte{1})

	require.Eventually(t, func() bool { return h.ViewerCount() == 0 }, time.Second, time.Millisecond)
	<-done
}
