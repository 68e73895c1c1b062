package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// SignalStore receives congestion observations pushed by a streaming feed.
type SignalStore interface {
	Store(v quant.SignalMicros, now quant.TimeStamp)
}

// gasMessage is one streamed congestion observation. Gas price arrives as
// a decimal string in gwei; parsing stays in fixed point.
type gasMessage struct {
	Channel    string `json:"channel"`
	BaseFeeGas string `json:"base_fee_gwei"`
	Ts         int64  `json:"ts"`
}

// GasFeedHandler implements WebSocketHandler for a streaming gas oracle,
// pushing each observation into the signal store.
type GasFeedHandler struct {
	url   string
	store SignalStore
}

func NewGasFeedHandler(url string, store SignalStore) *GasFeedHandler {
	return &GasFeedHandler{url: url, store: store}
}

func (h *GasFeedHandler) ID() string     { return "gas-feed" }
func (h *GasFeedHandler) GetURL() string { return h.url }

func (h *GasFeedHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := map[string]string{"op": "subscribe", "channel": "gas"}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *GasFeedHandler) OnMessage(ctx context.Context, msg []byte) {
	var m gasMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Warn("Gas feed: malformed message", slog.Any("error", err))
		return
	}
	if m.Channel != "gas" || m.BaseFeeGas == "" {
		return
	}

	signal, err := quant.ParseSignalMicros(m.BaseFeeGas)
	if err != nil {
		slog.Warn("Gas feed: unparseable gas price",
			slog.String("raw", m.BaseFeeGas), slog.Any("error", err))
		return
	}

	ts := m.Ts
	if ts == 0 {
		ts = time.Now().Unix()
	}
	h.store.Store(signal, quant.TimeStamp(ts))
}

func (h *GasFeedHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteMessage(websocket.PingMessage, nil)
}
