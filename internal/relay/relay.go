// Package relay drives one streamed chat turn: it loads history from the
// store, resolves the effective model, opens the provider stream, decodes it,
// re-frames each token for the browser, and commits the accumulated response
// exactly once. All mutable state lives in a single invocation; nothing is
// shared between concurrent relays.
package relay

import (
	"context"
	"io"
	"strings"

	"beet-chat/backend/internal/catalog"
	"beet-chat/backend/internal/models"
	"beet-chat/backend/internal/sse"
	"beet-chat/backend/internal/store"
	"beet-chat/backend/pkg/config"
	"beet-chat/backend/pkg/errors"
	"beet-chat/backend/pkg/logger"
)

// NewlinePlaceholder replaces literal newlines inside a token before it goes
// on the wire. SSE frames are newline-delimited, so the client-side renderer
// reconstitutes paragraph breaks from this marker instead.
const NewlinePlaceholder = "<br>"

// readBufferSize is the provider-side read granularity. Line boundaries do
// not align with read boundaries; the decoder carries fragments across reads.
const readBufferSize = 4096

// ProviderClient is the outbound half of the relay.
type ProviderClient interface {
	Complete(ctx context.Context, upstreamID string, messages []models.Message, maxTokens int) (io.ReadCloser, error)
}

// Options tune a Relay.
type Options struct {
	// HistoryWindow bounds how many transcript entries are replayed into
	// the provider request. Zero means the configured default.
	HistoryWindow int
	// SystemPrompt overrides the default synthesized system message.
	SystemPrompt string
}

// Relay orchestrates streamed chat turns. One Relay is shared by all
// conversations; each Run call is an independent single-flight operation.
type Relay struct {
	store         store.Store
	provider      ProviderClient
	log           *logger.Logger
	metrics       *metrics
	historyWindow int
	systemPrompt  string
}

// New builds a relay over the given store and provider client.
func New(st store.Store, pc ProviderClient, log *logger.Logger, opts Options) *Relay {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = config.Get().Chat.HistoryWindow
	}
	if opts.SystemPrompt == "" {
		if fromConfig := config.Get().Chat.SystemPrompt; fromConfig != "" {
			opts.SystemPrompt = fromConfig
		} else {
			opts.SystemPrompt = defaultSystemPrompt
		}
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	return &Relay{
		store:         st,
		provider:      pc,
		log:           log,
		metrics:       newMetrics(),
		historyWindow: opts.HistoryWindow,
		systemPrompt:  opts.SystemPrompt,
	}
}

// Run performs one streamed turn for a conversation. The caller has already
// persisted the new user message. Cancelling ctx (client disconnect) releases
// the provider connection promptly; provider failure closes the client stream
// abruptly. The assistant message is committed only after a clean terminal
// event; aborts never persist a partial accumulator.
func (r *Relay) Run(ctx context.Context, conversationID, requestedModel string, premiumUser bool, w FrameWriter) error {
	log := r.log.WithConversationID(conversationID)

	// Idle -> HistoryLoaded. The transcript is bounded to the most recent
	// window to cap provider context cost; the system message is
	// synthesized here and never stored.
	transcript, err := r.store.ReadTranscript(ctx, conversationID, r.historyWindow)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	model := catalog.EffectiveModel(requestedModel, premiumUser)

	messages := make([]models.Message, 0, len(transcript)+1)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: r.systemPrompt})
	messages = append(messages, transcript...)

	// HistoryLoaded -> RequestSent. Headers go out before the provider
	// call so the browser sees a stream that opens and then closes with no
	// tokens when the provider fails.
	w.Open()

	body, err := r.provider.Complete(ctx, model.UpstreamID, messages, model.MaxTokens)
	if err != nil {
		w.End()
		r.metrics.aborted(ctx)
		log.LogError(err, "provider request failed before streaming", "model", model.ID)
		return err
	}
	defer body.Close()

	// RequestSent -> Streaming. Accumulator, decoder and buffer belong to
	// this invocation alone.
	dec := sse.NewDecoder()
	var acc strings.Builder
	var tokens int64
	buf := make([]byte, readBufferSize)

streaming:
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if ev.Type == sse.EventTerminal {
					break streaming
				}

				text := strings.ReplaceAll(ev.Text, "\n", NewlinePlaceholder)
				acc.WriteString(text)
				tokens++

				if werr := w.WriteToken(text); werr != nil {
					// Streaming -> Aborted: the client went away.
					// Stop reading so the provider connection is
					// released; commit nothing.
					w.End()
					r.metrics.addTokens(ctx, tokens)
					r.metrics.addNoise(ctx, int64(dec.Noise()))
					r.metrics.aborted(ctx)
					log.Info("client disconnected mid-stream",
						"tokens_streamed", tokens,
						"decode_noise", dec.Noise(),
					)
					return nil
				}
			}
		}
		if readErr != nil {
			// Streaming -> Aborted: the byte stream ended without a
			// terminal event, or failed mid-read. No close frame, no
			// partial commit.
			w.End()
			r.metrics.addTokens(ctx, tokens)
			r.metrics.addNoise(ctx, int64(dec.Noise()))
			r.metrics.aborted(ctx)

			if ctx.Err() != nil {
				log.Info("client disconnected mid-stream",
					"tokens_streamed", tokens,
					"decode_noise", dec.Noise(),
				)
				return nil
			}
			if readErr == io.EOF {
				log.Warn("provider stream ended without terminal event",
					"tokens_streamed", tokens,
					"decode_noise", dec.Noise(),
				)
			} else {
				log.LogError(readErr, "provider stream failed mid-read",
					"tokens_streamed", tokens,
				)
			}
			return nil
		}
	}

	// Streaming -> Committing. Release the client first; persistence
	// failure after release is logged, not surfaced.
	closeErr := w.WriteClose()
	w.End()
	if closeErr != nil {
		log.Info("client disconnected before close frame")
	}

	// The commit must survive a client disconnect that races the terminal
	// event.
	commitCtx := context.WithoutCancel(ctx)
	if err := r.store.AppendMessage(commitCtx, conversationID, models.RoleAssistant, acc.String()); err != nil {
		log.LogError(err, "failed to persist assistant response",
			"response_len", acc.Len(),
		)
	}

	r.metrics.addTokens(ctx, tokens)
	r.metrics.addNoise(ctx, int64(dec.Noise()))
	r.metrics.completed(ctx)

	if tokens == 0 {
		// Not the same thing as swallowed noise; a clean stream with no
		// tokens at all usually means a provider-side problem.
		log.Warn("stream completed with zero tokens", "decode_noise", dec.Noise())
	} else if dec.Noise() > 0 {
		log.Debug("discarded malformed provider payloads", "decode_noise", dec.Noise())
	}

	return nil
}
