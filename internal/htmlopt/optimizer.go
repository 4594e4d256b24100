// Package htmlopt reduces raw page HTML to a compact form suitable for LLM
// form analysis. The optimizer strips non-content elements, prunes attributes
// down to a semantic whitelist, and truncates the result to a byte budget
// without cutting through a tag.
package htmlopt

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// preservedAttrs is the attribute whitelist. Everything here either helps
// identify a field (id, name, data-testid), describes it (label-adjacent
// attributes), or carries form semantics.
var preservedAttrs = map[string]bool{
	"id":          true,
	"class":       true,
	"name":        true,
	"type":        true,
	"value":       true,
	"placeholder": true,
	"for":         true,
	"href":        true,
	"src":         true,
	"alt":         true,
	"title":       true,
	"role":        true,
	"checked":     true,
	"selected":    true,
	"disabled":    true,
	"readonly":    true,
	"required":    true,
	"action":      true,
	"method":      true,
	"data-testid": true,
	"data-test":   true,
	"data-cy":     true,
	"min":         true,
	"max":         true,
	"maxlength":   true,
	"pattern":     true,
	"multiple":    true,
	"autocomplete": true,
}

// Optimizer cleans and truncates page HTML.
type Optimizer struct {
	maxBytes int
	logger   *zap.Logger
}

// New builds an Optimizer with the given byte budget for the output.
func New(maxBytes int, logger *zap.Logger) *Optimizer {
	return &Optimizer{
		maxBytes: maxBytes,
		logger:   logger.Named("htmlopt"),
	}
}

// Optimize strips scripts, styles, comments, and hidden elements, prunes
// attributes to the whitelist, collapses whitespace, and truncates the
// result to the configured byte budget. The original HTML is returned
// unmodified on parse failure so a malformed page never blocks detection.
func (o *Optimizer) Optimize(rawHTML string) string {
	cleaned, err := o.clean(rawHTML)
	if err != nil {
		o.logger.Warn("HTML optimization failed, using raw HTML", zap.Error(err))
		cleaned = rawHTML
	}

	before := len(rawHTML)
	cleaned = truncateAtTagBoundary(cleaned, o.maxBytes)
	o.logger.Debug("Optimized page HTML",
		zap.Int("raw_bytes", before),
		zap.Int("optimized_bytes", len(cleaned)),
	)
	return cleaned
}

func (o *Optimizer) clean(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg, link, meta, template").Remove()

	// Hidden elements carry no fillable fields.
	doc.Find("[hidden]").Remove()
	doc.Find("[style*='display:none']").Remove()
	doc.Find("[style*='display: none']").Remove()
	doc.Find("[style*='visibility:hidden']").Remove()
	doc.Find("[style*='visibility: hidden']").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]

		removeCommentChildren(node)

		var kept []html.Attribute
		for _, attr := range node.Attr {
			if !preservedAttrs[attr.Key] && !strings.HasPrefix(attr.Key, "aria-") {
				continue
			}
			switch attr.Key {
			case "class":
				// Long utility-class lists add bytes without meaning.
				classes := strings.Fields(attr.Val)
				if len(classes) > 3 {
					attr.Val = strings.Join(classes[:3], " ")
				}
			case "src", "href":
				if strings.HasPrefix(attr.Val, "data:") {
					attr.Val = "data:..."
				} else if len(attr.Val) > 100 {
					attr.Val = attr.Val[:100] + "..."
				}
			}
			kept = append(kept, attr)
		}
		node.Attr = kept

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				c.Data = strings.Join(strings.Fields(c.Data), " ")
			}
		}
	})

	return doc.Html()
}

func removeCommentChildren(node *html.Node) {
	var toRemove []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			toRemove = append(toRemove, c)
		}
	}
	for _, n := range toRemove {
		node.RemoveChild(n)
	}
}

// truncateAtTagBoundary cuts s to at most maxBytes, backing up to the last
// complete closing tag so the LLM never sees a half-open element.
func truncateAtTagBoundary(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := s[:maxBytes]
	if idx := strings.LastIndex(cut, ">"); idx != -1 {
		cut = cut[:idx+1]
	}
	return cut
}
