// Package extract turns PDF bytes into per-page plain text. Two independent
// extraction methods are orchestrated: when the primary one yields an empty
// page the secondary is tried for that page, and when the primary cannot
// parse the document at all the secondary handles the whole document.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrExtractionFailed means both extraction methods failed for the whole
// document. Ingestion aborts and no artifacts are written.
var ErrExtractionFailed = errors.New("text extraction failed")

// PageExtractor produces one plain-text string per page, in page order.
type PageExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

type Extractor struct {
	primary   PageExtractor
	secondary PageExtractor
	logger    *slog.Logger
}

func New(primary, secondary PageExtractor) *Extractor {
	return &Extractor{
		primary:   primary,
		secondary: secondary,
		logger:    slog.Default(),
	}
}

// NewDefault wires the standard pair: plain-text reader first, content-stream
// scraper second.
func NewDefault() *Extractor {
	return New(&PlainTextExtractor{}, &ContentStreamExtractor{})
}

// ExtractPages runs the two-stage strategy. Empty pages in the result are
// legitimate (blank or image-only pages for which both methods found no text).
func (e *Extractor) ExtractPages(data []byte) ([]string, error) {
	pages, err := e.primary.ExtractPages(data)
	if err != nil {
		e.logger.Warn("primary extraction failed, switching to secondary", "error", err)
		pages, err = e.secondary.ExtractPages(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		return pages, nil
	}

	// retry individual empty pages with the secondary method
	var fallback []string
	fallbackTried := false
	for i, page := range pages {
		if strings.TrimSpace(page) != "" {
			continue
		}
		if !fallbackTried {
			fallbackTried = true
			fallback, err = e.secondary.ExtractPages(data)
			if err != nil {
				e.logger.Warn("secondary extraction failed, keeping empty pages", "error", err)
				break
			}
		}
		if i < len(fallback) && strings.TrimSpace(fallback[i]) != "" {
			e.logger.Info("recovered page text via secondary extractor", "page", i+1)
			pages[i] = fallback[i]
		}
	}

	return pages, nil
}
