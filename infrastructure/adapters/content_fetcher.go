package adapters

import (
	"io"
	"net/http"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, error)
}

type contentFetcher struct {
	logger outbound.LoggerPort
}

func NewContentFetcher(logger outbound.LoggerPort) ContentFetcher {
	return &contentFetcher{
		logger: logger,
	}
}

// FetchContent executes the request and classifies failures: 4xx responses
// are input errors (retrying cannot help), everything else is transient or
// provider trouble.
func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, error) {
	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, domain.TransientError("%s %s: %v", req.Method, req.URL, err)
	}

	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			c.logger.Error(closeErr, "Failed to close the response body")
		}
	}(res.Body)

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to read the response body", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, domain.TransientError("read response body: %v", err)
	}

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices {
		return payload, nil
	}

	c.logger.ErrorWithFields(nil, "HTTP request returned non-OK status code", map[string]interface{}{
		"method":  req.Method,
		"URL":     req.URL.String(),
		"status":  res.StatusCode,
		"message": string(payload),
	})
	if res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError {
		return nil, domain.InputError("%s %s returned %d: %s", req.Method, req.URL, res.StatusCode, payload)
	}
	return nil, domain.ProviderError("%s %s returned %d: %s", req.Method, req.URL, res.StatusCode, payload)
}
