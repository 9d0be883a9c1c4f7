package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m3rciful/motivebot/core/netutil"
)

// DefaultProviderURL is the ZenQuotes endpoint returning one random quote.
const DefaultProviderURL = "https://zenquotes.io/api/random"

const maxResponseBytes = 64 << 10

var (
	// ErrEmptyResponse is returned when the provider answers with no usable quote.
	ErrEmptyResponse = errors.New("quotes: empty provider response")
	// ErrMalformedResponse is returned when the provider body is not the expected JSON shape.
	ErrMalformedResponse = errors.New("quotes: malformed provider response")
)

// Provider fetches a random quote from a remote service.
type Provider interface {
	Random(ctx context.Context) (Quote, error)
}

// HTTPProvider queries a ZenQuotes-compatible endpoint: a JSON array whose
// first element carries the text in "q" and the author in "a".
type HTTPProvider struct {
	url    string
	client *http.Client
}

// zenQuote fields are pointers so a missing or null key is told apart from an empty one.
type zenQuote struct {
	Q *string `json:"q"`
	A *string `json:"a"`
}

// NewHTTPProvider builds a provider for url. A nil client selects http.DefaultClient.
func NewHTTPProvider(url string, client *http.Client) *HTTPProvider {
	if strings.TrimSpace(url) == "" {
		url = DefaultProviderURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{url: url, client: client}
}

// Random performs a single GET against the provider. It does not retry.
func (p *HTTPProvider) Random(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("quotes: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quotes: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Quote{}, &netutil.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	items, err := decodeZenQuotes(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Quote{}, err
	}
	if len(items) == 0 {
		return Quote{}, ErrEmptyResponse
	}
	first := items[0]
	if first.Q == nil || first.A == nil {
		return Quote{}, fmt.Errorf("%w: missing q or a", ErrMalformedResponse)
	}

	q := Quote{
		Text:        strings.TrimSpace(*first.Q),
		Attribution: strings.TrimSpace(*first.A),
	}
	if q.Text == "" {
		return Quote{}, ErrEmptyResponse
	}
	return q, nil
}

// decodeZenQuotes requires the body to hold exactly one JSON array.
func decodeZenQuotes(r io.Reader) ([]zenQuote, error) {
	dec := json.NewDecoder(r)
	var items []zenQuote
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedResponse)
	}
	return items, nil
}
