// Package translate brings descriptions to the working language before they
// are parsed.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/revelaction/phascan/retry"
)

// ErrTranslation is wrapped by every error caused by a text that could not
// be translated.
var ErrTranslation = errors.New("translation failure")

// Translator returns text in the working language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Func adapts a function to the Translator interface.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Passthrough returns the text unchanged. It declares the input is already
// in the working language.
type Passthrough struct{}

func (Passthrough) Translate(ctx context.Context, text string) (string, error) {
	return text, nil
}

// Options of the HTTP translator.
type Options struct {
	URL    string
	APIKey string

	// Source language, "auto" to detect.
	Source string
	Target string

	Policy retry.Policy
	Client *http.Client

	// RateLimit is the maximum number of requests per second, zero for no
	// limit. Public instances ban clients that go over their quota.
	RateLimit float64
}

// HTTP is a client of a LibreTranslate compatible service:
//
//	POST {url}/translate {"q": "...", "source": "auto", "target": "en", "format": "text"}
//	-> {"translatedText": "..."}
type HTTP struct {
	opts    Options
	limiter *rate.Limiter
}

var _ Translator = (*HTTP)(nil)

// NewHTTP returns a translator. Empty Source and Target default to "auto"
// and "en".
func NewHTTP(opts Options) *HTTP {
	if opts.Source == "" {
		opts.Source = "auto"
	}
	if opts.Target == "" {
		opts.Target = "en"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	opts.URL = strings.TrimSuffix(opts.URL, "/")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &HTTP{opts: opts, limiter: limiter}
}

type apiRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type apiResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (h *HTTP) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(apiRequest{
		Q:      text,
		Source: h.opts.Source,
		Target: h.opts.Target,
		Format: "text",
		APIKey: h.opts.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", ErrTranslation, err)
	}

	var translated string
	err = retry.Do(ctx, h.opts.Policy, func(ctx context.Context) error {
		if err := h.limiter.Wait(ctx); err != nil {
			return err
		}

		t, err := h.do(ctx, body)
		if err != nil {
			return err
		}
		translated = t
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslation, err)
	}

	return translated, nil
}

func (h *HTTP) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.opts.URL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", statusError(resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return "", retry.Permanent(fmt.Errorf("JSON decoding error: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := apiResp.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return "", statusError(resp.StatusCode, msg)
	}

	if apiResp.Error != "" {
		return "", retry.Permanent(fmt.Errorf("api error: %s", apiResp.Error))
	}

	if strings.TrimSpace(apiResp.TranslatedText) == "" {
		return "", retry.Permanent(errors.New("empty translation"))
	}

	return apiResp.TranslatedText, nil
}

// statusError retries rate limits and server errors only.
func statusError(status int, msg string) error {
	err := fmt.Errorf("api error (status %d): %s", status, msg)
	if status == http.StatusTooManyRequests || status >= 500 {
		return err
	}
	return retry.Permanent(err)
}
