// Package transcribe streams audio to a live transcription websocket and
// surfaces the returned text. Interim fragments and low-confidence finals are
// separated so callers can show a live caption while only committing settled
// text to the note.
package transcribe

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultURL is the live transcription websocket endpoint.
	DefaultURL = "wss://api.gladia.io/audio/text/audio-transcription"

	// minConfidence is the threshold below which a transcript fragment is
	// treated as interim rather than final.
	minConfidence = 0.5

	// chunkSize is how much audio each frame message carries.
	chunkSize = 16 * 1024
)

// Config holds the configuration for the transcription client.
type Config struct {
	// APIKey authenticates the session. Required.
	APIKey string
	// URL overrides DefaultURL, used in tests.
	URL string
	// Language controls the provider's language behaviour.
	Language string
	Logger   *slog.Logger
}

// Transcript is one fragment of recognized speech.
type Transcript struct {
	Text       string
	Confidence float64
	// Final reports whether the fragment settled. Non-final fragments may be
	// revised by later messages.
	Final bool
}

// Session is a live transcription connection. Audio goes in through Send,
// fragments come out of the Transcripts channel until Close or a server-side
// disconnect.
type Session struct {
	conn   *websocket.Conn
	config Config
	out    chan Transcript

	mu     sync.Mutex
	closed bool
	err    error
}

// NewSession dials the transcription endpoint and sends the configuration
// frame. The returned session is ready for audio.
func NewSession(ctx context.Context, config Config) (*Session, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("no transcription API key configured")
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Language == "" {
		config.Language = "automatic single language"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to transcription service: %w", err)
	}

	err = conn.WriteJSON(map[string]string{
		"x_gladia_key":       config.APIKey,
		"language_behaviour": config.Language,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send session configuration: %w", err)
	}

	s := &Session{
		conn:   conn,
		config: config,
		out:    make(chan Transcript, 16),
	}
	go s.readLoop()
	return s, nil
}

// Transcripts delivers recognized fragments. The channel closes when the
// session ends; check Err afterwards.
func (s *Session) Transcripts() <-chan Transcript {
	return s.out
}

// Send submits a chunk of encoded audio as a base64 frame message.
func (s *Session) Send(audio []byte) error {
	if len(audio) == 0 {
		return nil
	}
	return s.conn.WriteJSON(map[string]string{
		"frames": base64.StdEncoding.EncodeToString(audio),
	})
}

// Close tears down the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

// Err reports why the session ended, nil for a clean close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type serverMessage struct {
	Type          string  `json:"type"`
	Transcription string  `json:"transcription"`
	Confidence    float64 `json:"confidence"`
	Error         string  `json:"error"`
}

func (s *Session) readLoop() {
	defer close(s.out)

	for {
		var msg serverMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			if !s.closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.err = err
			}
			s.mu.Unlock()
			return
		}

		if msg.Error != "" {
			if s.config.Logger != nil {
				s.config.Logger.Error("transcription service error", "error", msg.Error)
			}
			continue
		}
		if msg.Type != "transcript" && msg.Type != "final" || msg.Transcription == "" {
			continue
		}

		s.out <- Transcript{
			Text:       msg.Transcription,
			Confidence: msg.Confidence,
			Final:      msg.Type == "final" || msg.Confidence > minConfidence,
		}
	}
}

// Transcribe streams a complete recording through a session and returns the
// concatenated final fragments. It is the batch entry point for audio that
// was already captured and saved.
func Transcribe(ctx context.Context, config Config, audio io.Reader) (string, error) {
	session, err := NewSession(ctx, config)
	if err != nil {
		return "", err
	}
	defer session.Close()

	sendErr := make(chan error, 1)
	go func() {
		buf := make([]byte, chunkSize)
		for {
			n, err := audio.Read(buf)
			if n > 0 {
				if werr := session.Send(buf[:n]); werr != nil {
					sendErr <- werr
					return
				}
			}
			if err == io.EOF {
				sendErr <- nil
				return
			}
			if err != nil {
				sendErr <- err
				return
			}
		}
	}()

	var parts []string
	var flush <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return strings.Join(parts, " "), ctx.Err()
		case err := <-sendErr:
			if err != nil {
				return strings.Join(parts, " "), fmt.Errorf("failed to stream audio: %w", err)
			}
			sendErr = nil
			// Leave the read side open briefly so in-flight fragments land.
			flush = time.After(500 * time.Millisecond)
		case <-flush:
			session.Close()
			flush = nil
		case t, ok := <-session.Transcripts():
			if !ok {
				if err := session.Err(); err != nil {
					return strings.Join(parts, " "), fmt.Errorf("transcription stream failed: %w", err)
				}
				return strings.Join(parts, " "), nil
			}
			if t.Final {
				parts = append(parts, t.Text)
			}
		}
	}
}
