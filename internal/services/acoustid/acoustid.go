// Package acoustid identifies audio files by chroma fingerprint. It
// runs the fpcalc tool to fingerprint a file and looks the print up
// against the AcoustID web service. The whole feature is optional: no
// API key means no lookups, and conversion never depends on it.
package acoustid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"reel/internal/config"
	"reel/internal/logging"
	"reel/internal/services"
)

var commandContext = exec.CommandContext

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("acoustid lookups disabled")

// Match is the best recording candidate for a fingerprint.
type Match struct {
	RecordingID string
	Title       string
	Artist      string
	Score       float64
}

// Client fingerprints files and queries the AcoustID service.
type Client struct {
	apiKey  string
	baseURL string
	fpcalc  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client from configuration. HTTP calls retry with
// backoff on transient failures.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = time.Duration(cfg.AcoustID.TimeoutSeconds) * time.Second

	return &Client{
		apiKey:  cfg.AcoustID.APIKey,
		baseURL: cfg.AcoustID.BaseURL,
		fpcalc:  cfg.FPCalcBinary(),
		http:    retryClient.StandardClient(),
		logger:  logging.WithComponent(logger, "acoustid"),
	}
}

// Enabled reports whether lookups are configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// fingerprint holds fpcalc output.
type fingerprint struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// Identify fingerprints the file and returns the highest scoring
// recording match, or nil when the service knows nothing about it.
func (c *Client) Identify(ctx context.Context, path string) (*Match, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	print, err := c.fingerprintFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.lookup(ctx, print)
}

func (c *Client) fingerprintFile(ctx context.Context, path string) (*fingerprint, error) {
	cmd := commandContext(ctx, c.fpcalc, "-json", path)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrToolMissing, "acoustid", "fingerprint", "fpcalc failed", err)
	}
	var print fingerprint
	if err := json.Unmarshal(stdout.Bytes(), &print); err != nil {
		return nil, fmt.Errorf("parse fpcalc output: %w", err)
	}
	if print.Fingerprint == "" {
		return nil, errors.New("fpcalc produced no fingerprint")
	}
	return &print, nil
}

type lookupResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"recordings"`
	} `json:"results"`
}

func (c *Client) lookup(ctx context.Context, print *fingerprint) (*Match, error) {
	params := url.Values{}
	params.Set("client", c.apiKey)
	params.Set("meta", "recordings")
	params.Set("duration", strconv.Itoa(int(print.Duration)))
	params.Set("fingerprint", print.Fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("acoustid returned status %d", resp.StatusCode)
	}
	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode acoustid response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("acoustid status %q", payload.Status)
	}

	var best *Match
	for _, result := range payload.Results {
		for _, recording := range result.Recordings {
			if best != nil && result.Score <= best.Score {
				continue
			}
			match := &Match{RecordingID: recording.ID, Title: recording.Title, Score: result.Score}
			if len(recording.Artists) > 0 {
				match.Artist = recording.Artists[0].Name
			}
			best = match
		}
	}
	if best == nil {
		c.logger.Debug("no acoustid match")
		return nil, nil
	}
	c.logger.Info("identified recording",
		logging.String("title", best.Title),
		logging.String("artist", best.Artist))
	return best, nil
}
