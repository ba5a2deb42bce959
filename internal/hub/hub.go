package hub

import (
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// Hub fans the three event streams out to spectators: binary frames,
// structured events, and recent-history hydration for new connections.
type Hub struct {
	logger *zap.Logger

	screenWidth  int
	screenHeight int

	mu         sync.RWMutex
	frameConns map[*conn]struct{}
	eventConns map[*conn]struct{}
	gameState  *model.GameState

	votes   *ring[model.CachedVote]
	results *ring[model.CachedAction]
}

// New builds a hub with the given history buffer sizes.
func New(screenWidth, screenHeight, maxVotes, maxResults int, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:       logger,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		frameConns:   make(map[*conn]struct{}),
		eventConns:   make(map[*conn]struct{}),
		votes:        newRing[model.CachedVote](maxVotes),
		results:      newRing[model.CachedAction](maxResults),
	}
}

// ViewerCount reports the number of connected frame spectators.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.frameConns)
}

// ServeFrames runs one frame-channel spectator until its socket drops.
// It blocks; the server layer calls it from the connection handler.
func (h *Hub) ServeFrames(ws socket) {
	c := newConn(ws)

	if err := c.writeJSON(screenInfoMsg{Type: "screenInfo", Width: h.screenWidth, Height: h.screenHeight}); err != nil {
		c.close()
		return
	}

	h.mu.Lock()
	h.frameConns[c] = struct{}{}
	count := len(h.frameConns)
	h.mu.Unlock()

	h.logger.Info("frame spectator connected", zap.Int("viewers", count))
	h.broadcastViewerCount(count)

	// Reader loop: frame spectators never send anything meaningful,
	// but the read detects disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.dropFrameConn(c)
}

// ServeEvents runs one event-channel spectator: hydrate, then stream.
func (h *Hub) ServeEvents(ws socket) {
	c := newConn(ws)

	h.mu.RLock()
	state := h.gameState
	h.mu.RUnlock()

	hydration := []any{
		screenInfoMsg{Type: "screenInfo", Width: h.screenWidth, Height: h.screenHeight},
		recentHistoryMsg{Type: "recentHistory", Votes: h.votes.snapshot(), Results: h.results.snapshot()},
	}
	if state != nil {
		hydration = append(hydration, gameStateMsg{Type: "gameState", State: *state})
	}
	for _, msg := range hydration {
		if err := c.writeJSON(msg); err != nil {
			c.close()
			return
		}
	}

	h.mu.Lock()
	h.eventConns[c] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.eventConns, c)
	h.mu.Unlock()
	c.close()
}

// BroadcastFrame sends one compressed frame to every frame spectator.
func (h *Hub) BroadcastFrame(frame []byte) {
	for _, c := range h.frameSnapshot() {
		if err := c.writeBinary(frame); err != nil {
			h.dropFrameConn(c)
		}
	}
}

// BroadcastVote echoes a live vote to event spectators and records it
// in the recent-history buffer.
func (h *Hub) BroadcastVote(vote model.Vote) {
	cached := model.CacheVote(vote)
	h.votes.push(cached)
	h.broadcastEvent(voteMsg{Type: "vote", Vote: cached})
}

// BroadcastResult publishes a finalized window result.
func (h *Hub) BroadcastResult(result model.WindowResult) {
	cached := model.CacheResult(result)
	h.results.push(cached)
	h.broadcastEvent(windowResultMsg{Type: "windowResult", Result: cached})
}

// BroadcastGameState publishes a changed game-state snapshot and keeps
// it as the hydration value for future connections.
func (h *Hub) BroadcastGameState(state model.GameState) {
	h.mu.Lock()
	h.gameState = &state
	h.mu.Unlock()
	h.broadcastEvent(gameStateMsg{Type: "gameState", State: state})
}

// RecentVotes returns the hydration buffer contents, oldest first.
func (h *Hub) RecentVotes() []model.CachedVote { return h.votes.snapshot() }

// RecentResults returns the hydration buffer contents, oldest first.
func (h *Hub) RecentResults() []model.CachedAction { return h.results.snapshot() }

func (h *Hub) broadcastEvent(msg any) {
	h.mu.RLock()
	conns := lo.Keys(h.eventConns)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(msg); err != nil {
			h.mu.Lock()
			delete(h.eventConns, c)
			h.mu.Unlock()
			c.close()
		}
	}
}

func (h *Hub) frameSnapshot() []*conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.frameConns)
}

// dropFrameConn removes a frame spectator and announces the new count.
func (h *Hub) dropFrameConn(c *conn) {
	h.mu.Lock()
	if _, ok := h.frameConns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.frameConns, c)
	count := len(h.frameConns)
	h.mu.Unlock()

	c.close()
	h.logger.Info("frame spectator disconnected", zap.Int("viewers", count))
	h.broadcastViewerCount(count)
}

func (h *Hub) broadcastViewerCount(count int) {
	msg := viewerCountMsg{Type: "viewerCount", Count: count}
	for _, c := range h.frameSnapshot() {
		if err := c.writeJSON(msg); err != nil {
			h.dropFrameConn(c)
		}
	}
}
