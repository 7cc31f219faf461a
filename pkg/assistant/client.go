// Package assistant wraps an OpenAI-compatible chat completion endpoint for
// the study helpers: sermon summaries, theological definitions, word studies
// and topical verse search. Groq is the default backend.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL points at Groq's OpenAI-compatible API.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is a currently available stable model.
	DefaultModel = "llama-3.3-70b-versatile"

	// maxPromptChars bounds how much note content a summary prompt carries.
	maxPromptChars = 6000
)

// Config holds the configuration for the assistant client.
type Config struct {
	// APIKey is the bearer token. Required for all calls.
	APIKey string
	// BaseURL overrides DefaultBaseURL, used in tests.
	BaseURL string
	// Model overrides DefaultModel.
	Model  string
	Logger *slog.Logger
}

// Client issues chat completions.
type Client struct {
	config Config
	http   *resty.Client
}

// Definition is a short explanation of a theological term.
type Definition struct {
	Definition string `json:"definition"`
	Verse      string `json:"verse"`
}

// WordStudy explains the Greek or Hebrew origin of an English word.
type WordStudy struct {
	Original        string `json:"original"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
	Usage           string `json:"usage"`
}

// NewClient creates an assistant client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Client{config: config, http: resty.New()}
}

// Summarize condenses sermon notes into key points and an application step.
// Empty content short-circuits without a network call, and overly long notes
// are truncated before prompting.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	if len(content) > maxPromptChars {
		content = content[:maxPromptChars]
	}

	prompt := fmt.Sprintf("Summarize these sermon notes into 3 key bullet points and 1 actionable application step. Keep it concise. Notes: %s", content)
	return c.complete(ctx, prompt, nil)
}

// Define explains a theological term in two sentences with a supporting
// verse. Failures degrade to a stub definition instead of an error so UI
// callers always have something to show.
func (c *Client) Define(ctx context.Context, term string) Definition {
	prompt := fmt.Sprintf(`You are a helpful theology assistant. Provide a concise, 2-sentence definition of the Christian theological term %q. Then provide 1 key Bible verse reference. Format as JSON: {"definition": "...", "verse": "Book Ch:V"}`, term)

	var def Definition
	if err := c.completeJSON(ctx, prompt, &def); err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("definition lookup failed", "term", term, "error", err)
		}
		return Definition{Definition: "Automated definition unavailable."}
	}
	return def
}

// Study explains the Greek or Hebrew origin of a word, optionally in the
// context of a passage. Failures degrade to a stub like Define.
func (c *Client) Study(ctx context.Context, word, passage string) WordStudy {
	prompt := fmt.Sprintf(`As a Biblical scholar, provide the Greek or Hebrew origin and meaning of the English word %q`, word)
	if passage != "" {
		if len(passage) > 200 {
			passage = passage[:200]
		}
		prompt += fmt.Sprintf(` as used in this Bible passage: %q`, passage)
	}
	prompt += `.

Return a JSON object with these exact fields:
{
    "original": "the Greek or Hebrew word (use actual Greek/Hebrew characters if possible)",
    "transliteration": "phonetic spelling in English letters",
    "meaning": "clear definition in 2-3 sentences",
    "usage": "brief note on how this word is used in Scripture"
}

Only return the JSON object, no other text.`

	var study WordStudy
	if err := c.completeJSON(ctx, prompt, &study); err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("word study failed", "word", word, "error", err)
		}
		return WordStudy{Original: word, Meaning: "Definition unavailable. Please try again."}
	}
	if study.Original == "" {
		study.Original = word
	}
	return study
}

// FindVerses returns up to five verse references relevant to a topic.
func (c *Client) FindVerses(ctx context.Context, topic string) ([]string, error) {
	prompt := fmt.Sprintf(`Find up to 5 Bible verses that are most relevant to: %q. Return ONLY a JSON object like: {"verses": ["John 3:16", "Romans 8:28", "Psalm 23:1"]}. Include both Old and New Testament if applicable.`, topic)

	var result struct {
		Verses     []string `json:"verses"`
		References []string `json:"references"`
	}
	if err := c.completeJSON(ctx, prompt, &result); err != nil {
		return nil, err
	}

	refs := result.Verses
	if len(refs) == 0 {
		refs = result.References
	}
	if len(refs) > 5 {
		refs = refs[:5]
	}
	return refs, nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string, responseFormat map[string]any) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("no assistant API key configured")
	}

	var body chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetBody(chatRequest{
			Model:          c.config.Model,
			Messages:       []chatMessage{{Role: "user", Content: prompt}},
			ResponseFormat: responseFormat,
		}).
		SetResult(&body).
		Post(c.config.BaseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("assistant API returned %s", resp.Status())
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return body.Choices[0].Message.Content, nil
}

func (c *Client) completeJSON(ctx context.Context, prompt string, out any) error {
	content, err := c.complete(ctx, prompt, map[string]any{"type": "json_object"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("failed to parse assistant response: %w", err)
	}
	return nil
}
