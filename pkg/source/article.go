package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

// MaxArticleSize caps the HTML body read from an article URL.
const MaxArticleSize = 10 * 1024 * 1024

// Article is the readable text extracted from a web page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Candidates yields the maximal letter runs of the article text in order.
// Case is preserved so capitalized words are still filtered out downstream.
func (a *Article) Candidates() *bufio.Scanner {
	sc := bufio.NewScanner(strings.NewReader(a.Text))
	sc.Split(ScanLetters)
	return sc
}

// FetchArticle downloads rawURL and extracts its main text with readability.
// A nil client uses http.DefaultClient.
func FetchArticle(ctx context.Context, client *http.Client, rawURL string) (*Article, error) {
	if client == nil {
		client = http.DefaultClient
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Some sites reject obvious non-browser clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxArticleSize {
		return nil, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, MaxArticleSize)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxArticleSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxArticleSize {
		return nil, fmt.Errorf("response body exceeded maximum size of %d bytes", MaxArticleSize)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	return &Article{URL: rawURL, Title: article.Title, Text: article.TextContent}, nil
}

// ScanLetters is a bufio.SplitFunc yielding maximal runs of Unicode letters.
// Everything else separates tokens.
func ScanLetters(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[start:])
		if unicode.IsLetter(r) {
			break
		}
		start += width
	}
	for i := start; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			break
		}
		r, width := utf8.DecodeRune(data[i:])
		if !unicode.IsLetter(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	// Request more data.
	return start, nil, nil
}
