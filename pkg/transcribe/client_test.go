package transcribe_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nickigann03/word-flow-app/pkg/transcribe"
)

var upgrader = websocket.Upgrader{}

// fakeProvider upgrades to websocket, checks the configuration frame and then
// hands the connection to a script.
func fakeProvider(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var config map[string]string
		if err := conn.ReadJSON(&config); err != nil {
			t.Errorf("no configuration frame: %v", err)
			return
		}
		if config["x_gladia_key"] == "" {
			t.Error("configuration frame is missing the API key")
		}
		if config["language_behaviour"] == "" {
			t.Error("configuration frame is missing the language behaviour")
		}

		script(conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSession(t *testing.T) {
	t.Run("Classifies Fragments by Type and Confidence", func(t *testing.T) {
		srv := fakeProvider(t, func(conn *websocket.Conn) {
			replies := []map[string]any{
				{"type": "transcript", "transcription": "for god so", "confidence": 0.3},
				{"type": "transcript", "transcription": "for god so loved", "confidence": 0.9},
				{"type": "final", "transcription": "for God so loved the world", "confidence": 0.4},
				{"type": "transcript", "transcription": "", "confidence": 0.9},
			}
			for _, reply := range replies {
				if err := conn.WriteJSON(reply); err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
			}
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteMessage(websocket.CloseMessage, msg)
		})
		defer srv.Close()

		session, err := transcribe.NewSession(context.Background(), transcribe.Config{
			APIKey: "test-key",
			URL:    wsURL(srv),
		})
		if err != nil {
			t.Fatalf("NewSession failed: %v", err)
		}
		defer session.Close()

		var got []transcribe.Transcript
		for fragment := range session.Transcripts() {
			got = append(got, fragment)
		}
		if err := session.Err(); err != nil {
			t.Fatalf("session ended with error: %v", err)
		}

		// Empty transcriptions are dropped.
		if len(got) != 3 {
			t.Fatalf("expected 3 fragments, got %d: %v", len(got), got)
		}
		if got[0].Final {
			t.Error("low-confidence interim fragment reported as final")
		}
		if !got[1].Final {
			t.Error("high-confidence fragment not reported as final")
		}
		if !got[2].Final {
			t.Error("final-typed fragment not reported as final despite low confidence")
		}
	})

	t.Run("Send Encodes Audio as Base64 Frames", func(t *testing.T) {
		audio := []byte("pcm audio bytes")
		received := make(chan []byte, 1)

		srv := fakeProvider(t, func(conn *websocket.Conn) {
			var frame map[string]string
			if err := conn.ReadJSON(&frame); err != nil {
				t.Errorf("no frame message: %v", err)
				return
			}
			decoded, err := base64.StdEncoding.DecodeString(frame["frames"])
			if err != nil {
				t.Errorf("frames payload is not base64: %v", err)
				return
			}
			received <- decoded
		})
		defer srv.Close()

		session, err := transcribe.NewSession(context.Background(), transcribe.Config{
			APIKey: "test-key",
			URL:    wsURL(srv),
		})
		if err != nil {
			t.Fatalf("NewSession failed: %v", err)
		}
		defer session.Close()

		if err := session.Send(audio); err != nil {
			t.Fatalf("Send failed: %v", err)
		}

		select {
		case decoded := <-received:
			if !bytes.Equal(decoded, audio) {
				t.Errorf("server received %q, sent %q", decoded, audio)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server never received the frame")
		}
	})

	t.Run("Requires an API Key", func(t *testing.T) {
		if _, err := transcribe.NewSession(context.Background(), transcribe.Config{}); err == nil {
			t.Error("expected an error without an API key")
		}
	})
}

func TestTranscribe(t *testing.T) {
	t.Run("Joins Final Fragments", func(t *testing.T) {
		srv := fakeProvider(t, func(conn *websocket.Conn) {
			// Wait for the first audio frame before replying.
			var frame map[string]string
			if err := conn.ReadJSON(&frame); err != nil {
				t.Errorf("no frame message: %v", err)
				return
			}

			replies := []map[string]any{
				{"type": "transcript", "transcription": "turn with", "confidence": 0.2},
				{"type": "final", "transcription": "turn with me", "confidence": 0.9},
				{"type": "final", "transcription": "to John chapter three", "confidence": 0.8},
			}
			for _, reply := range replies {
				if err := conn.WriteJSON(reply); err != nil {
					return
				}
			}

			// Hold the connection open until the client hangs up.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		})
		defer srv.Close()

		audio := bytes.NewReader(bytes.Repeat([]byte{0x01}, 1024))
		text, err := transcribe.Transcribe(context.Background(), transcribe.Config{
			APIKey: "test-key",
			URL:    wsURL(srv),
		}, audio)
		if err != nil {
			t.Fatalf("Transcribe failed: %v", err)
		}
		if text != "turn with me to John chapter three" {
			t.Errorf("unexpected transcript: %q", text)
		}
	})

	t.Run("Empty Recording Yields Empty Text", func(t *testing.T) {
		srv := fakeProvider(t, func(conn *websocket.Conn) {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		})
		defer srv.Close()

		text, err := transcribe.Transcribe(context.Background(), transcribe.Config{
			APIKey: "test-key",
			URL:    wsURL(srv),
		}, bytes.NewReader(nil))
		if err != nil {
			t.Fatalf("Transcribe failed: %v", err)
		}
		if text != "" {
			t.Errorf("expected empty transcript, got %q", text)
		}
	})
}
