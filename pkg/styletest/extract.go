package styletest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/recera/vango-styled/pkg/styletest/cssast"
)

// DefaultMarkerPrefix starts the bookkeeping lines written by pkg/styling.
const DefaultMarkerPrefix = "data-vango.g"

// Extractor turns raw registry output into clean CSS and parses it.
type Extractor struct {
	marker *regexp.Regexp
	parser *cssast.Parser
	log    *zap.Logger
}

// NewExtractor creates an extractor dropping lines that start with
// markerPrefix followed by a group number. An empty prefix selects
// DefaultMarkerPrefix.
func NewExtractor(markerPrefix string, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	if markerPrefix == "" {
		markerPrefix = DefaultMarkerPrefix
	}
	return &Extractor{
		marker: regexp.MustCompile(`^\s*` + regexp.QuoteMeta(markerPrefix) + `\d+`),
		parser: cssast.NewParser(log),
		log:    log.Named("extractor"),
	}
}

// ExtractCSS strips style tag wrappers and marker lines from raw and joins
// the remaining lines with single spaces.
func (e *Extractor) ExtractCSS(raw string) string {
	text := raw
	if strings.Contains(raw, "<style") {
		text = e.styleText(raw)
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if e.marker.MatchString(line) {
			dropped++
			continue
		}
		kept = append(kept, line)
	}

	e.log.Debug("Extracted CSS", zap.Int("lines", len(kept)), zap.Int("markers", dropped))
	return strings.TrimSpace(strings.Join(kept, " "))
}

// styleText returns the concatenated text of every style element in markup
func (e *Extractor) styleText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.log.Debug("Cannot read style markup, using it verbatim", zap.Error(err))
		return markup
	}

	var parts []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "\n")
}

// Parse parses clean CSS. Malformed input yields a *ParseError.
func (e *Extractor) Parse(css string) (*cssast.Stylesheet, error) {
	return e.parser.Parse(css)
}

// Extract runs ExtractCSS and Parse over raw registry output.
func (e *Extractor) Extract(raw string) (*cssast.Stylesheet, error) {
	return e.Parse(e.ExtractCSS(raw))
}
