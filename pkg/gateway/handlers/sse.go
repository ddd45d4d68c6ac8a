package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/metrics"
	"github.com/latchhq/latch/pkg/store/channel"
	"github.com/latchhq/latch/pkg/token"
)

// ssePollInterval is how often the subscription loop checks the channel
// for new events.
const ssePollInterval = time.Second

// SSEHandler streams channel events over Server-Sent Events.
type SSEHandler struct {
	channels channel.Store
	metrics  metrics.GatewayMetrics
}

// NewSSEHandler creates the SSE subscription handler.
func NewSSEHandler(channels channel.Store, m metrics.GatewayMetrics) *SSEHandler {
	return &SSEHandler{channels: channels, metrics: m}
}

// Subscribe streams channel events as they arrive. EventSource cannot set
// request headers, so the capability token is accepted from the query
// string as well as X-Channel-Token.
//
// The stream opens with a `connected` event, then emits one `message`
// event per channel event, using the sequence number as the SSE id so
// clients can resume with afterSeq.
func (h *SSEHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channelId")
	if channelID == "" {
		response.InvalidRequest(w, "channelId is required")
		return
	}

	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = r.Header.Get(ChannelTokenHeader)
	}
	if raw == "" {
		response.Unauthorized(w, "channel token is required")
		return
	}

	meta, err := h.channels.GetMetadata(r.Context(), channelID)
	if errors.Is(err, channel.ErrNotFound) {
		response.NotFound(w, "channel not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel load failed",
			logger.KeyChannel, channelID, logger.KeyError, err)
		response.Upstream(w)
		return
	}

	capability, err := token.VerifyCapability(meta.Secret, raw)
	if err != nil {
		response.Unauthorized(w, "invalid channel token")
		return
	}
	if !capability.Has(token.PermRead) {
		response.Forbidden(w, "token does not permit read")
		return
	}

	afterSeq := uint64(0)
	if s := r.URL.Query().Get("afterSeq"); s != "" {
		afterSeq, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			response.InvalidRequest(w, "afterSeq must be a non-negative integer")
			return
		}
	}
	// Last-Event-ID wins over afterSeq so reconnects resume seamlessly.
	if s := r.Header.Get("Last-Event-ID"); s != "" {
		if resume, err := strconv.ParseUint(s, 10, 64); err == nil {
			afterSeq = resume
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Upstream(w)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "connected", 0, map[string]any{
		"channelId": channelID,
		"afterSeq":  afterSeq,
	})
	flusher.Flush()

	if lc := logger.FromContext(r.Context()); lc != nil {
		lc.ChannelID = channelID
	}
	logger.DebugCtx(r.Context(), "sse subscription opened",
		logger.KeyChannel, channelID, "afterSeq", afterSeq)
	metrics.ObserveSSE(h.metrics, 1)
	defer metrics.ObserveSSE(h.metrics, -1)

	ticker := time.NewTicker(ssePollInterval)
	defer ticker.Stop()

	for {
		for {
			result, err := h.channels.Read(r.Context(), channelID, channel.ReadOptions{
				AfterSeq: afterSeq,
			})
			if errors.Is(err, channel.ErrNotFound) {
				// Channel deleted mid-stream. Close the stream.
				return
			}
			if err != nil {
				if r.Context().Err() != nil {
					return
				}
				// Transient read failures must not kill the stream.
				logger.WarnCtx(r.Context(), "sse poll failed",
					logger.KeyChannel, channelID, logger.KeyError, err)
				break
			}

			for _, event := range result.Events {
				writeSSE(w, "message", event.Seq, event)
				afterSeq = event.Seq
			}
			if len(result.Events) > 0 {
				flusher.Flush()
			}
			if !result.HasMore {
				break
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// writeSSE emits one SSE frame. An id of 0 omits the id line.
func writeSSE(w http.ResponseWriter, event string, id uint64, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if id > 0 {
		fmt.Fprintf(w, "id: %d\n", id)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
