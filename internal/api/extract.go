package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/fetcher"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const extractRequestKey = "extract_request"

// Validation messages for POST /api/extract.
const (
	MsgMissingURL     = "missing required parameter: url"
	MsgInvalidBody    = "invalid request body"
	MsgBodyTooLarge   = "request body too large"
	outcomeSuccess    = "success"
	outcomeParseError = "parse_error"
)

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractHandler serves POST /api/extract.
type ExtractHandler struct {
	fetcher    Fetcher
	dispatcher RulesetSelector
	engine     Extractor
	recorder   Recorder
}

// NewExtractHandler creates an ExtractHandler. recorder may be nil.
func NewExtractHandler(f Fetcher, d RulesetSelector, e Extractor, recorder Recorder) *ExtractHandler {
	return &ExtractHandler{
		fetcher:    f,
		dispatcher: d,
		engine:     e,
		recorder:   recorder,
	}
}

// BindRequest validates the request body and stores it for Extract. It runs
// before authentication so malformed input is reported as 400 even without a token.
func (h *ExtractHandler) BindRequest(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		respondError(c, apperrors.InvalidInput(MsgMissingURL))
		return
	}

	if _, err := fetcher.ValidateURL(req.URL); err != nil {
		respondError(c, err)
		return
	}

	c.Set(extractRequestKey, req)
	c.Next()
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return apperrors.Wrap(apperrors.KindPayloadTooLarge, MsgBodyTooLarge, err)
	case errors.Is(err, io.EOF):
		return apperrors.InvalidInput(MsgMissingURL)
	default:
		return apperrors.Wrap(apperrors.KindInvalidInput, MsgInvalidBody, err)
	}
}

// Extract fetches the page, selects a ruleset and returns the extracted content.
func (h *ExtractHandler) Extract(c *gin.Context) {
	req, ok := c.MustGet(extractRequestKey).(ExtractRequest)
	if !ok {
		respondError(c, apperrors.New(apperrors.KindUnknown, "extract request not bound"))
		return
	}

	log := logger.FromContext(c.Request.Context())
	if claims, found := auth.GetClaims(c); found {
		log = log.With(logger.String("user_id", claims.UserID))
	}
	ruleset := h.dispatcher.Select(req.URL)

	html, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		h.observe(ruleset, apperrors.KindOf(err).String())
		log.Warn("Fetch failed",
			logger.String("url", req.URL),
			logger.String("ruleset", string(ruleset)),
			logger.String("kind", apperrors.KindOf(err).String()),
			logger.Error(err),
		)
		respondError(c, err)
		return
	}

	start := time.Now()
	result, err := h.engine.Extract(html, req.URL, ruleset)
	if h.recorder != nil {
		h.recorder.ObserveExtractDuration(string(ruleset), time.Since(start))
	}
	if err != nil {
		h.observe(ruleset, outcomeParseError)
		respondError(c, apperrors.Wrap(apperrors.KindUnknown, "failed to extract content", err))
		return
	}

	h.observe(ruleset, outcomeSuccess)
	log.Info("Content extracted",
		logger.String("url", req.URL),
		logger.String("ruleset", string(ruleset)),
		logger.Int("content_length", len(result.Content)),
	)

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: result})
}

func (h *ExtractHandler) observe(ruleset extractor.RulesetID, outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveExtract(string(ruleset), outcome)
	}
}
