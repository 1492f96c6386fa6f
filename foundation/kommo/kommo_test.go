package kommo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/lyracrm/lyra/foundation/logger"
)

func Test_Signature(t *testing.T) {
	// Known HMAC-SHA1 vector: key "key", message "The quick brown fox
	// jumps over the lazy dog".
	body := []byte("The quick brown fox jumps over the lazy dog")

	got := signature(body, "key")
	exp := "de7c9b85b8b78aa6bc8a7a36f70a90701c9db4d9"

	if got != exp {
		t.Errorf("signature: got %q, exp %q", got, exp)
	}
}

func Test_ContentMD5(t *testing.T) {
	got := contentMD5([]byte("The quick brown fox jumps over the lazy dog"))
	exp := "9e107d9d372bb6826bd81d3542a419d6"

	if got != exp {
		t.Errorf("contentMD5: got %q, exp %q", got, exp)
	}
}

func Test_SendReply(t *testing.T) {
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	var gotSig string
	var gotMD5 string
	var gotBody []byte

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/origin/custom/scope-1", func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotMD5 = r.Header.Get("Content-MD5")

		var err error
		gotBody, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading body: %s", err)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(log, Config{
		BotID:         "bot-1",
		ChannelSecret: "secret",
		ScopeID:       "scope-1",
		BaseURL:       srv.URL,
	})
	c.now = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }

	res := c.SendReply(context.Background(), Reply{
		ConversationID: "chat-42",
		ReceiverID:     "user-7",
		ReceiverName:   "Ada",
		Text:           "hello",
	})

	if !res.Success {
		t.Fatalf("send reply failed: %s", res.Error)
	}

	if exp := signature(gotBody, "secret"); gotSig != exp {
		t.Errorf("X-Signature: got %q, exp %q", gotSig, exp)
	}
	if exp := contentMD5(gotBody); gotMD5 != exp {
		t.Errorf("Content-MD5: got %q, exp %q", gotMD5, exp)
	}

	var event newMessageEvent
	if err := json.Unmarshal(gotBody, &event); err != nil {
		t.Fatalf("decoding event: %s", err)
	}

	if event.EventType != "new_message" {
		t.Errorf("event_type: got %q, exp %q", event.EventType, "new_message")
	}
	if event.Payload.ConversationID != "chat-42" {
		t.Errorf("conversation_id: got %q, exp %q", event.Payload.ConversationID, "chat-42")
	}
	if event.Payload.Sender.RefID != "bot-1" {
		t.Errorf("sender ref_id: got %q, exp %q", event.Payload.Sender.RefID, "bot-1")
	}
}

func Test_SendReply_MissingConfig(t *testing.T) {
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	c := New(log, Config{})

	res := c.SendReply(context.Background(), Reply{ConversationID: "chat-1"})
	if res.Success {
		t.Fatal("expected soft failure when configuration is missing")
	}
	if res.Error != "missing configuration" {
		t.Errorf("error: got %q, exp %q", res.Error, "missing configuration")
	}
}
