package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

// HeuristicStrategy walks a DOM snapshot with goquery and derives forms
// without any model involvement. It is the terminal fallback, so it must
// never depend on network access.
type HeuristicStrategy struct{}

// NewHeuristicStrategy builds the DOM-walking strategy.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name implements Strategy.
func (s *HeuristicStrategy) Name() string { return "heuristic" }

// Detect implements Strategy.
func (s *HeuristicStrategy) Detect(_ context.Context, req Request) ([]schemas.DetectedForm, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}

	// Subtree mode: the operator picked a container, treat its fillable
	// descendants as one synthetic form.
	if req.SubtreeSelector != "" {
		container := doc.Find(req.SubtreeSelector).First()
		if container.Length() == 0 {
			return nil, fmt.Errorf("subtree selector %q resolved no element", req.SubtreeSelector)
		}
		fields := extractFields(container)
		if len(fields) == 0 {
			return nil, nil
		}
		return []schemas.DetectedForm{{
			FormIndex:         0,
			ContainerSelector: req.SubtreeSelector,
			Fields:            fields,
		}}, nil
	}

	var forms []schemas.DetectedForm
	firstVisible := -1
	doc.Find("form").Each(func(i int, sel *goquery.Selection) {
		fields := extractFields(sel)
		if len(fields) == 0 {
			return
		}
		// data-gf-viewport is stamped page-side onto forms fully inside
		// the viewport at snapshot time.
		if _, visible := sel.Attr("data-gf-viewport"); visible && firstVisible < 0 {
			firstVisible = len(forms)
		}
		forms = append(forms, schemas.DetectedForm{
			FormIndex:         i,
			ContainerSelector: containerSelector(sel, i),
			Fields:            fields,
		})
	})

	// No index requested: the first fully visible form outranks document
	// order.
	if req.FormIndex < 0 && firstVisible > 0 {
		visible := forms[firstVisible]
		forms = append(forms[:firstVisible], forms[firstVisible+1:]...)
		forms = append([]schemas.DetectedForm{visible}, forms...)
	}

	return filterByIndex(forms, req.FormIndex), nil
}

func containerSelector(form *goquery.Selection, index int) string {
	if id, ok := form.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if testID, ok := form.Attr("data-testid"); ok && testID != "" {
		return fmt.Sprintf(`form[data-testid="%s"]`, testID)
	}
	return fmt.Sprintf("form:nth-of-type(%d)", index+1)
}

func extractFields(container *goquery.Selection) []schemas.FormField {
	var fields []schemas.FormField
	container.Find("input, textarea, select").Each(func(_ int, sel *goquery.Selection) {
		field, ok := buildField(sel)
		if !ok {
			return
		}
		fields = append(fields, field)
	})
	return fields
}

func buildField(sel *goquery.Selection) (schemas.FormField, bool) {
	tag := goquery.NodeName(sel)
	fieldType := tag
	if tag == "input" {
		fieldType = strings.ToLower(sel.AttrOr("type", "text"))
	}

	switch fieldType {
	case "hidden", "submit", "button", "reset", "image":
		return schemas.FormField{}, false
	}

	primary, alternative := fieldSelectors(sel)
	if primary == "" {
		return schemas.FormField{}, false
	}

	label := deriveLabel(sel)
	return schemas.FormField{
		Selector:            primary,
		AlternativeSelector: alternative,
		Type:                fieldType,
		Label:               label,
		Required:            isRequired(sel, label),
		TestID:              sel.AttrOr("data-testid", ""),
	}, true
}

// fieldSelectors ranks the candidates: test id, element id, then name
// scoped by tag. The runner-up becomes the alternative selector.
func fieldSelectors(sel *goquery.Selection) (primary, alternative string) {
	var candidates []string
	if testID := sel.AttrOr("data-testid", ""); testID != "" {
		candidates = append(candidates, fmt.Sprintf(`[data-testid="%s"]`, testID))
	}
	if id := sel.AttrOr("id", ""); id != "" {
		candidates = append(candidates, "#"+id)
	}
	if name := sel.AttrOr("name", ""); name != "" {
		candidates = append(candidates, fmt.Sprintf(`%s[name="%s"]`, goquery.NodeName(sel), name))
	}

	switch len(candidates) {
	case 0:
		return "", ""
	case 1:
		return candidates[0], ""
	default:
		return candidates[0], candidates[1]
	}
}

// deriveLabel walks the label sources in order: label[for], the previous
// sibling label, an enclosing label, then the placeholder.
func deriveLabel(sel *goquery.Selection) string {
	if id := sel.AttrOr("id", ""); id != "" {
		doc := sel.Closest("html")
		if doc.Length() > 0 {
			labelFor := doc.Find(fmt.Sprintf(`label[for="%s"]`, id)).First()
			if text := cleanLabelText(labelFor.Text()); text != "" {
				return text
			}
		}
	}

	prev := sel.Prev()
	if goquery.NodeName(prev) == "label" {
		if text := cleanLabelText(prev.Text()); text != "" {
			return text
		}
	}

	enclosing := sel.Closest("label")
	if enclosing.Length() > 0 {
		if text := cleanLabelText(enclosing.Text()); text != "" {
			return text
		}
	}

	return strings.TrimSpace(sel.AttrOr("placeholder", ""))
}

func cleanLabelText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(strings.Trim(text, " *•:"))
}

// isRequired honors the required attribute and falls back to scanning the
// label text for the asterisk and bullet glyphs conventionally used to mark
// mandatory fields.
func isRequired(sel *goquery.Selection, label string) bool {
	if _, ok := sel.Attr("required"); ok {
		return true
	}
	if sel.AttrOr("aria-required", "") == "true" {
		return true
	}
	rawLabel := rawLabelText(sel)
	return strings.Contains(rawLabel, "*") || strings.Contains(rawLabel, "•") ||
		strings.Contains(label, "*") || strings.Contains(label, "•")
}

// rawLabelText is deriveLabel without glyph trimming, so required markers
// survive for inspection.
func rawLabelText(sel *goquery.Selection) string {
	if id := sel.AttrOr("id", ""); id != "" {
		doc := sel.Closest("html")
		if doc.Length() > 0 {
			if text := doc.Find(fmt.Sprintf(`label[for="%s"]`, id)).First().Text(); strings.TrimSpace(text) != "" {
				return text
			}
		}
	}
	if prev := sel.Prev(); goquery.NodeName(prev) == "label" {
		return prev.Text()
	}
	if enclosing := sel.Closest("label"); enclosing.Length() > 0 {
		return enclosing.Text()
	}
	return ""
}
