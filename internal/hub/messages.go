package hub

import "github.com/bhuan/monad-plays-pokemon/internal/model"

// Wire envelopes for the event and frame channels. Binary websocket
// messages carry compressed frames; everything else is JSON text.

type screenInfoMsg struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type viewerCountMsg struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type voteMsg struct {
	Type string           `json:"type"`
	Vote model.CachedVote `json:"vote"`
}

type windowResultMsg struct {
	Type   string             `json:"type"`
	Result model.CachedAction `json:"result"`
}

type gameStateMsg struct {
	Type  string          `json:"type"`
	State model.GameState `json:"state"`
}

type recentHistoryMsg struct {
	Type    string               `json:"type"`
	Votes   []model.CachedVote   `json:"votes"`
	Results []model.CachedAction `json:"results"`
}
