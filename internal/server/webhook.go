// Package server exposes the HTTP surface of the bot: the platform
// webhook (handshake + signed event delivery) and liveness endpoints.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/duetapp/duet-bot/internal/app"
	"github.com/duetapp/duet-bot/internal/config"
	"github.com/duetapp/duet-bot/internal/service/conversation"
)

const signatureHeader = "X-Hub-Signature-256"

// webhookEvent mirrors the platform's delivery body:
// { object, entry: [ { messaging: [ { sender, message?, postback? } ] } ] }
type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message *struct {
		Text        string `json:"text"`
		Attachments []struct {
			Type    string `json:"type"`
			Payload struct {
				URL string `json:"url"`
			} `json:"payload"`
		} `json:"attachments"`
	} `json:"message"`
	Postback *struct {
		Payload string `json:"payload"`
	} `json:"postback"`
}

// Handler serves the webhook and liveness routes.
type Handler struct {
	appCtx *app.AppContext
	engine *conversation.Service

	verifyToken string
	appSecret   string
}

// NewHandler builds the gateway over the conversation engine.
func NewHandler(appCtx *app.AppContext, cfg *config.Config, engine *conversation.Service) *Handler {
	return &Handler{
		appCtx:      appCtx,
		engine:      engine,
		verifyToken: cfg.Messenger.VerifyToken,
		appSecret:   cfg.Messenger.AppSecret,
	}
}

// VerifyHandler answers the platform's subscription handshake. Every
// request gets a definite answer: the challenge on a token match, 403
// otherwise (including absent parameters).
func (h *Handler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.appCtx.Logger.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	h.appCtx.Logger.Warn("webhook verification rejected", "mode", mode)
	w.WriteHeader(http.StatusForbidden)
}

// validSignature checks the hex HMAC-SHA256 of the exact raw body against
// the sha256= digest in the signature header.
func (h *Handler) validSignature(r *http.Request, body []byte) bool {
	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// EventHandler receives signed deliveries. Events are dispatched to the
// engine on their own goroutines in array order and the request is
// acknowledged immediately: a slow downstream send must never block the
// platform's fast-200 contract.
func (h *Handler) EventHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.appCtx.Logger.Error("failed to read webhook body", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !h.validSignature(r, body) {
		h.appCtx.Logger.Warn("invalid webhook signature", "kind", "signature_invalid")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.appCtx.Logger.Error("malformed webhook body", "kind", "payload_malformed", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if event.Object != "page" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	for _, entry := range event.Entry {
		for _, ev := range entry.Messaging {
			go h.dispatch(ev)
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

// dispatchBudget bounds one event's processing; the webhook response does
// not wait for it.
const dispatchBudget = 30 * time.Second

func (h *Handler) dispatch(ev messagingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchBudget)
	defer cancel()

	senderID := ev.Sender.ID
	switch {
	case ev.Message != nil:
		msg := conversation.Message{Text: ev.Message.Text}
		for _, att := range ev.Message.Attachments {
			msg.Attachments = append(msg.Attachments, conversation.Attachment{
				Type: att.Type,
				URL:  att.Payload.URL,
			})
		}
		h.engine.HandleMessage(ctx, senderID, msg)
	case ev.Postback != nil:
		h.engine.HandlePostback(ctx, senderID, ev.Postback.Payload)
	default:
		h.appCtx.Logger.Debug("ignoring messaging event without message or postback", "sender", senderID)
	}
}

// HealthHandler reports liveness.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RootHandler describes the service and its routes.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Duet Dating App Messenger Bot",
		"status":  "Running",
		"endpoints": map[string]string{
			"webhook": "/webhook",
			"health":  "/health",
		},
	})
}
