package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://wordsapiv1.p.rapidapi.com"
	DefaultHost        = "wordsapiv1.p.rapidapi.com"
	DefaultQuotaHeader = "X-RateLimit-Requests-Remaining"

	maxBodySize = 1 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Host is sent as x-rapidapi-host.
	Host   string
	APIKey string
	// QuotaHeader names the response header carrying the remaining-calls counter.
	QuotaHeader string
	Timeout     time.Duration
	// RequestsPerSecond paces lookups; 0 disables pacing.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client performs one blocking HTTP request per lookup. It never retries;
// the caller decides what a failed lookup means.
type Client struct {
	baseURL     string
	host        string
	apiKey      string
	quotaHeader string
	http        *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient builds a Client, filling unset options with WordsAPI defaults.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.QuotaHeader == "" {
		opts.QuotaHeader = DefaultQuotaHeader
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		host:        opts.Host,
		apiKey:      opts.APIKey,
		quotaHeader: opts.QuotaHeader,
		http:        httpClient,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}
}

// Lookup fetches lexical data for word.
// The returned error is non-nil only when ctx ends; every service failure is
// reported through LookupResult.Status.
func (c *Client) Lookup(ctx context.Context, word string) (LookupResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return LookupResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/words/"+url.PathEscape(word), nil)
	if err != nil {
		c.logger.Error("build lookup request", zap.String("word", word), zap.Error(err))
		return LookupResult{Status: StatusTransientFailure}, nil
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return LookupResult{}, ctx.Err()
		}
		c.logger.Warn("lookup request failed", zap.String("word", word), zap.Error(err))
		return LookupResult{Status: StatusTransientFailure}, nil
	}
	defer resp.Body.Close()

	res := LookupResult{
		QuotaRemaining: parseQuota(resp.Header.Get(c.quotaHeader)),
		QuotaObserved:  true,
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		res.Status = StatusNotFound
		return res, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.Debug("lookup returned non-success status",
			zap.String("word", word), zap.Int("status", resp.StatusCode))
		res.Status = StatusTransientFailure
		return res, nil
	}

	var info WordInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&info); err != nil {
		if ctx.Err() != nil {
			return LookupResult{}, ctx.Err()
		}
		c.logger.Warn("decode lookup response", zap.String("word", word), zap.Error(err))
		res.Status = StatusTransientFailure
		return res, nil
	}
	if info.Results == nil {
		res.Status = StatusNotFound
		return res, nil
	}

	res.Status = StatusFound
	res.Frequency = info.Frequency
	res.Senses = info.Results
	return res, nil
}

// parseQuota reads the remaining-calls header; absent or malformed means 0.
func parseQuota(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// String describes the outcome for logs.
func (r LookupResult) String() string {
	return fmt.Sprintf("%s senses=%d quota=%d", r.Status, len(r.Senses), r.QuotaRemaining)
}
