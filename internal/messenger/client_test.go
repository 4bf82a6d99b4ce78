package messenger_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/duetapp/duet-bot/internal/errors"
	"github.com/duetapp/duet-bot/internal/messenger"
)

func TestSendPostsRecipientAndMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message_id":"m1"}`))
	}))
	defer srv.Close()

	client := messenger.NewClient(srv.URL, "token123")
	err := client.Send(context.Background(), "user-9", messenger.Text("hello"))
	require.NoError(t, err)

	assert.Equal(t, "/me/messages?access_token=token123", gotPath)

	recipient := gotBody["recipient"].(map[string]any)
	assert.Equal(t, "user-9", recipient["id"])
	message := gotBody["message"].(map[string]any)
	assert.Equal(t, "hello", message["text"])
}

func TestSendSurfacesPlatformError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	client := messenger.NewClient(srv.URL, "bad-token")
	err := client.Send(context.Background(), "user-9", messenger.Text("hello"))
	require.Error(t, err)
	assert.Equal(t, svcErr.KindPlatformSend, svcErr.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestQuickRepliesPayloadShape(t *testing.T) {
	p := messenger.QuickReplies("pick one",
		messenger.Choice{Title: "Yes", Payload: `{"action":"x"}`},
		messenger.Choice{Title: "No", Payload: `{"action":"y"}`},
	)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "pick one", decoded["text"])

	qrs := decoded["quick_replies"].([]any)
	require.Len(t, qrs, 2)
	first := qrs[0].(map[string]any)
	assert.Equal(t, "text", first["content_type"])
	assert.Equal(t, "Yes", first["title"])
}

func TestGenericTemplatePayloadShape(t *testing.T) {
	p := messenger.GenericTemplate(
		messenger.Card{Title: "👨 Profile", Subtitle: "Hi", ImageURL: "https://cdn.example.com/a.jpg"},
		messenger.Card{Title: "👩 Profile", Subtitle: "Hey", ImageURL: "https://cdn.example.com/b.jpg"},
	)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	att := decoded["attachment"].(map[string]any)
	assert.Equal(t, "template", att["type"])
	pl := att["payload"].(map[string]any)
	assert.Equal(t, "generic", pl["template_type"])
	assert.Len(t, pl["elements"].([]any), 2)

	// plain text payloads carry no attachment key at all
	raw, err = json.Marshal(messenger.Text("hi"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "attachment")
}
