// Package api implements the HTTP endpoints: page extraction, token issuance
// and verification, and the JSON 404 handler.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

//go:generate mockgen -destination=../testutils/mocks/fetcher/mock_fetcher.go -package=fetcher github.com/capykyo/capy-book-fetch/internal/api Fetcher

// Fetcher downloads a page and returns its HTML.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// RulesetSelector picks the ruleset for a URL.
type RulesetSelector interface {
	Select(rawURL string) extractor.RulesetID
}

// Extractor turns HTML into a Result.
type Extractor interface {
	Extract(html, baseURL string, id extractor.RulesetID) (*extractor.Result, error)
}

// Recorder receives extraction metrics. A nil Recorder disables recording.
type Recorder interface {
	ObserveExtract(ruleset, outcome string)
	ObserveExtractDuration(ruleset string, d time.Duration)
}

// SuccessResponse wraps successful extraction results.
type SuccessResponse struct {
	Success bool              `json:"success"`
	Data    *extractor.Result `json:"data"`
}

// respondError writes the failure body for err with its mapped status.
func respondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= 500 {
		_ = c.Error(err)
	} else {
		logger.FromContext(c.Request.Context()).Debug("Request rejected",
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, apperrors.NewResponse(err))
}
