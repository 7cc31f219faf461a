// Package scripture looks up Bible passages across several providers. Public
// domain translations come from bible-api.com with no credentials; copyrighted
// translations need an API.Bible or ESV API key. Any provider failure falls
// back to the KJV so an insertion never blocks on a missing key.
package scripture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Provider names a passage backend.
type Provider string

const (
	ProviderBibleAPI Provider = "bible-api"
	ProviderAPIBible Provider = "api-bible"
	ProviderESV      Provider = "esv-api"
)

// Version describes a supported translation and which provider serves it.
type Version struct {
	ID           string
	Name         string
	Abbreviation string
	Provider     Provider
	// APIID is the API.Bible bible identifier, set only for that provider.
	APIID string
}

// Versions lists the supported translations, most popular first.
var Versions = []Version{
	{ID: "esv", Name: "English Standard Version", Abbreviation: "ESV", Provider: ProviderESV},
	{ID: "niv", Name: "New International Version", Abbreviation: "NIV", Provider: ProviderAPIBible, APIID: "78a9f6124f344018-01"},
	{ID: "nlt", Name: "New Living Translation", Abbreviation: "NLT", Provider: ProviderAPIBible, APIID: "65eec8e0b60e656b-01"},
	{ID: "nasb", Name: "New American Standard Bible", Abbreviation: "NASB", Provider: ProviderAPIBible, APIID: "c315fa9f71d4af3a-01"},
	{ID: "nkjv", Name: "New King James Version", Abbreviation: "NKJV", Provider: ProviderAPIBible, APIID: "de4e12af7f28f599-02"},
	{ID: "kjv", Name: "King James Version", Abbreviation: "KJV", Provider: ProviderBibleAPI},
	{ID: "web", Name: "World English Bible", Abbreviation: "WEB", Provider: ProviderBibleAPI},
	{ID: "asv", Name: "American Standard Version", Abbreviation: "ASV", Provider: ProviderBibleAPI},
	{ID: "bbe", Name: "Bible in Basic English", Abbreviation: "BBE", Provider: ProviderBibleAPI},
	{ID: "darby", Name: "Darby Translation", Abbreviation: "DARBY", Provider: ProviderBibleAPI},
	{ID: "ylt", Name: "Young's Literal Translation", Abbreviation: "YLT", Provider: ProviderBibleAPI},
}

// VersionByID falls back to KJV for unknown ids.
func VersionByID(id string) Version {
	for _, v := range Versions {
		if v.ID == id {
			return v
		}
	}
	return VersionByID("kjv")
}

// Passage is a resolved lookup result.
type Passage struct {
	Reference   string  `json:"reference"`
	Text        string  `json:"text"`
	Translation string  `json:"translation"`
	Verses      []Verse `json:"verses,omitempty"`
}

// Verse is a single numbered verse within a passage, when the provider
// returns that granularity.
type Verse struct {
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Config holds the configuration for the passage client. Keys are optional;
// without them only the public domain translations resolve directly.
type Config struct {
	// APIBibleKey authenticates against api.scripture.api.bible.
	APIBibleKey string
	// ESVKey authenticates against api.esv.org.
	ESVKey string
	// BibleAPIURL overrides the bible-api.com base URL, used in tests.
	BibleAPIURL string
	// APIBibleURL overrides the API.Bible base URL, used in tests.
	APIBibleURL string
	// ESVURL overrides the ESV API base URL, used in tests.
	ESVURL string
	Logger *slog.Logger
}

// Client resolves passages and caches results per reference and translation
// for the lifetime of the process.
type Client struct {
	config Config
	http   *resty.Client

	mu    sync.Mutex
	cache map[string]Passage
}

// NewClient creates a passage client.
func NewClient(config Config) *Client {
	if config.BibleAPIURL == "" {
		config.BibleAPIURL = "https://bible-api.com"
	}
	if config.APIBibleURL == "" {
		config.APIBibleURL = "https://api.scripture.api.bible/v1"
	}
	if config.ESVURL == "" {
		config.ESVURL = "https://api.esv.org/v3"
	}
	return &Client{
		config: config,
		http:   resty.New(),
		cache:  make(map[string]Passage),
	}
}

// GetVerse resolves a reference like "John 3:16" in the given translation.
// When the preferred provider fails or is unconfigured the lookup retries
// against the KJV before giving up.
func (c *Client) GetVerse(ctx context.Context, reference, translation string) (Passage, error) {
	cacheKey := reference + ":" + translation

	c.mu.Lock()
	cached, ok := c.cache[cacheKey]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	version := VersionByID(translation)

	passage, err := c.fetch(ctx, reference, version)
	if err != nil && version.ID != "kjv" {
		if c.config.Logger != nil {
			c.config.Logger.Warn("passage lookup failed, falling back to KJV", "reference", reference, "translation", version.ID, "error", err)
		}
		passage, err = c.fetchBibleAPI(ctx, reference, "kjv")
	}
	if err != nil {
		return Passage{}, fmt.Errorf("failed to look up %q: %w", reference, err)
	}

	c.mu.Lock()
	c.cache[cacheKey] = passage
	c.mu.Unlock()
	return passage, nil
}

// GetChapter resolves an entire chapter of a book.
func (c *Client) GetChapter(ctx context.Context, book string, chapter int, translation string) (Passage, error) {
	return c.GetVerse(ctx, fmt.Sprintf("%s %d", book, chapter), translation)
}

// GetBook fetches every chapter of a book and returns them as HTML with
// chapter headings and superscript verse numbers. Chapters that fail to load
// are marked inline rather than aborting the whole book.
func (c *Client) GetBook(ctx context.Context, name, translation string) (string, error) {
	book, ok := BookByName(name)
	if !ok {
		return "", fmt.Errorf("unknown book %q", name)
	}

	var chapters []string
	for i := 1; i <= book.Chapters; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		passage, err := c.GetChapter(ctx, book.Name, i, translation)
		if err != nil {
			if c.config.Logger != nil {
				c.config.Logger.Warn("failed to fetch chapter", "book", book.Name, "chapter", i, "error", err)
			}
			chapters = append(chapters, fmt.Sprintf("<h2>%s %d</h2>\n<p><em>Failed to load chapter</em></p>", book.Name, i))
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "<h2>%s %d</h2>\n", book.Name, i)
		if len(passage.Verses) > 0 {
			for _, v := range passage.Verses {
				fmt.Fprintf(&b, "<sup>%d</sup> %s ", v.Verse, v.Text)
			}
		} else {
			fmt.Fprintf(&b, "<p>%s</p>", passage.Text)
		}
		chapters = append(chapters, b.String())
	}

	return strings.Join(chapters, "\n\n"), nil
}

// SearchResult is one verse hit from a keyword search.
type SearchResult struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Search runs a keyword search over a translation. Only API.Bible exposes
// search, so this needs a key and an API.Bible-served translation; other
// translations search against the NKJV text.
func (c *Client) Search(ctx context.Context, query, translation string, limit int) ([]SearchResult, error) {
	if c.config.APIBibleKey == "" {
		return nil, fmt.Errorf("no API.Bible key configured for search")
	}
	if limit <= 0 {
		limit = 10
	}

	version := VersionByID(translation)
	if version.APIID == "" {
		version = VersionByID("nkjv")
	}

	var body struct {
		Data struct {
			Verses []SearchResult `json:"verses"`
		} `json:"data"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-key", c.config.APIBibleKey).
		SetQueryParams(map[string]string{
			"query": query,
			"limit": fmt.Sprintf("%d", limit),
		}).
		SetResult(&body).
		Get(fmt.Sprintf("%s/bibles/%s/search", c.config.APIBibleURL, version.APIID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API.Bible returned %s", resp.Status())
	}
	return body.Data.Verses, nil
}

func (c *Client) fetch(ctx context.Context, reference string, version Version) (Passage, error) {
	switch version.Provider {
	case ProviderAPIBible:
		return c.fetchAPIBible(ctx, reference, version)
	case ProviderESV:
		return c.fetchESV(ctx, reference)
	default:
		return c.fetchBibleAPI(ctx, reference, version.ID)
	}
}

func (c *Client) fetchBibleAPI(ctx context.Context, reference, translation string) (Passage, error) {
	var body struct {
		Reference string  `json:"reference"`
		Text      string  `json:"text"`
		Verses    []Verse `json:"verses"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("reference", reference).
		SetQueryParam("translation", translation).
		SetResult(&body).
		Get(c.config.BibleAPIURL + "/{reference}")
	if err != nil {
		return Passage{}, err
	}
	if resp.IsError() {
		return Passage{}, fmt.Errorf("bible-api.com returned %s", resp.Status())
	}

	passage := Passage{
		Reference:   body.Reference,
		Text:        body.Text,
		Translation: strings.ToUpper(translation),
		Verses:      body.Verses,
	}
	if passage.Reference == "" {
		passage.Reference = reference
	}
	if passage.Text == "" {
		passage.Text = "Verse not found"
	}
	return passage, nil
}

func (c *Client) fetchAPIBible(ctx context.Context, reference string, version Version) (Passage, error) {
	if c.config.APIBibleKey == "" {
		return Passage{}, fmt.Errorf("no API.Bible key configured for %s", version.Abbreviation)
	}

	var body struct {
		Data struct {
			Reference string `json:"reference"`
			Content   string `json:"content"`
		} `json:"data"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-key", c.config.APIBibleKey).
		SetQueryParams(map[string]string{
			"content-type":            "text",
			"include-notes":           "false",
			"include-titles":          "false",
			"include-chapter-numbers": "false",
			"include-verse-numbers":   "true",
		}).
		SetResult(&body).
		Get(fmt.Sprintf("%s/bibles/%s/passages/%s", c.config.APIBibleURL, version.APIID, PassageID(reference)))
	if err != nil {
		return Passage{}, err
	}
	if resp.IsError() {
		return Passage{}, fmt.Errorf("API.Bible returned %s", resp.Status())
	}

	passage := Passage{
		Reference:   body.Data.Reference,
		Text:        body.Data.Content,
		Translation: version.Abbreviation,
	}
	if passage.Reference == "" {
		passage.Reference = reference
	}
	if passage.Text == "" {
		passage.Text = "Verse not found"
	}
	return passage, nil
}

func (c *Client) fetchESV(ctx context.Context, reference string) (Passage, error) {
	if c.config.ESVKey == "" {
		return Passage{}, fmt.Errorf("no ESV API key configured")
	}

	var body struct {
		Query    string   `json:"query"`
		Passages []string `json:"passages"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+c.config.ESVKey).
		SetQueryParams(map[string]string{
			"q":                          reference,
			"include-passage-references": "true",
			"include-verse-numbers":      "true",
			"include-footnotes":          "false",
			"include-headings":           "false",
		}).
		SetResult(&body).
		Get(c.config.ESVURL + "/passage/text/")
	if err != nil {
		return Passage{}, err
	}
	if resp.IsError() {
		return Passage{}, fmt.Errorf("ESV API returned %s", resp.Status())
	}

	passage := Passage{
		Reference:   body.Query,
		Text:        strings.Join(body.Passages, "\n\n"),
		Translation: "ESV",
	}
	if passage.Reference == "" {
		passage.Reference = reference
	}
	if passage.Text == "" {
		passage.Text = "Verse not found"
	}
	return passage, nil
}
