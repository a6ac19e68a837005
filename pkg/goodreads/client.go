package goodreads

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"grscraper/pkg/config"
	"grscraper/pkg/errors"
	"grscraper/pkg/logger"
	"grscraper/pkg/retry"
)

// Client issues HTTP requests against the catalogue. A single header set is
// reused across all requests, the way a browser session would carry them;
// page fetches and cover downloads use separate timeouts.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	headers        map[string]string
	policy         retry.Policy
	logger         logger.Logger
}

// NewClient creates a catalogue client from network configuration.
func NewClient(cfg config.NetworkConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	policy := retry.Policy{
		MaxAttempts: cfg.MaxRateLimitRetries,
		Cooldown:    cfg.RateLimitWait(),
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		downloadClient: &http.Client{
			Timeout: cfg.DownloadTimeout(),
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		policy: policy,
		logger: log,
	}
}

// SetHeader sets a custom header for all subsequent requests.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchDocument fetches a list page and parses it. On HTTP 429 it waits the
// configured cooldown and retries, repeating as long as the origin keeps
// rate limiting (bounded only if the policy sets a ceiling); the loop never
// sees 429 as an error. Transport errors and other HTTP failures come back
// as typed errors the caller treats as an empty page.
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	attempts := 0

	for {
		resp, err := c.doGet(ctx, c.httpClient, url)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			attempts++

			if c.policy.Exhausted(attempts) {
				c.logger.ErrorWithFields("rate limit retries exhausted", map[string]interface{}{
					"url":      url,
					"attempts": attempts,
				})
				return nil, &errors.Error{
					Type:    errors.ErrorTypeRateLimit,
					Message: "rate limit retries exhausted",
					Code:    resp.StatusCode,
				}
			}

			c.logger.WarnWithFields("rate limited, cooling down", map[string]interface{}{
				"url":      url,
				"cooldown": c.policy.Cooldown,
				"attempt":  attempts,
			})

			if err := retry.Wait(ctx, c.policy.Cooldown); err != nil {
				return nil, &errors.Error{
					Type:    errors.ErrorTypeUnknown,
					Message: fmt.Sprintf("cooldown interrupted: %v", err),
					Code:    resp.StatusCode,
				}
			}
			continue
		}

		if err := c.checkResponseStatus(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &errors.Error{
				Type:    errors.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse page: %v", err),
				Code:    resp.StatusCode,
			}
		}

		return doc, nil
	}
}

// DownloadImage fetches raw image bytes with the shorter download timeout.
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.doGet(ctx, c.downloadClient, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read image data: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})

	return data, nil
}

// doGet performs a GET with the session headers and maps transport failures
// to typed errors.
func (c *Client) doGet(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		errType := errors.ErrorTypeNetwork
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			errType = errors.ErrorTypeTimeout
		}

		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, &errors.Error{
			Type:    errType,
			Message: fmt.Sprintf("request failed: %v", err),
		}
	}

	return resp, nil
}

// checkResponseStatus maps unexpected HTTP statuses to typed errors.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}
