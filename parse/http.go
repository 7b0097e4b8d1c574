package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/revelaction/phascan/retry"
	"github.com/revelaction/phascan/sentence"
)

// HTTP calls a parse service:
//
//	POST {url}/parse {"text": "..."}
//
// answering with the sentences of the text in the spaCy token format
//
//	{"sentences": [{"id": 0, "tokens": [{"index": 0, "head": 1, "dep": "nsubj", ...}]}]}
type HTTP struct {
	url    string
	client *http.Client
	policy retry.Policy
}

var _ Parser = (*HTTP)(nil)

// NewHTTP returns a client for the parse service at url. A nil client uses
// http.DefaultClient.
func NewHTTP(url string, policy retry.Policy, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTP{
		url:    strings.TrimSuffix(url, "/"),
		client: client,
		policy: policy,
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

func (h *HTTP) Parse(ctx context.Context, text string) (sentence.Doc, error) {
	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return sentence.Doc{}, fmt.Errorf("%w: marshal request: %w", ErrParser, err)
	}

	var doc sentence.Doc
	err = retry.Do(ctx, h.policy, func(ctx context.Context) error {
		d, err := h.do(ctx, body)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return sentence.Doc{}, fmt.Errorf("%w: %w", ErrParser, err)
	}

	return doc, nil
}

func (h *HTTP) do(ctx context.Context, body []byte) (sentence.Doc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url+"/parse", bytes.NewReader(body))
	if err != nil {
		return sentence.Doc{}, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return sentence.Doc{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return sentence.Doc{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("parse service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return sentence.Doc{}, retry.Permanent(err)
		}
		return sentence.Doc{}, err
	}

	var doc sentence.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return sentence.Doc{}, retry.Permanent(fmt.Errorf("JSON decoding error: %w", err))
	}

	return doc, nil
}
