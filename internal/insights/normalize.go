package insights

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

const (
	defaultTitle       = "Financial Analysis"
	defaultMessage     = "Analysis provided"
	maxAnalysisSection = 5
)

var fenceStripper = strings.NewReplacer("```json\n", "", "```json", "", "```\n", "", "```", "")

// decoder tries to read one reply shape. ok is false when the shape does not apply.
type decoder func(clean string) (out []Insight, ok bool)

// Normalize maps a model reply onto Insights. It never fails: text that
// matches no known shape yields an empty, non-nil slice.
func Normalize(raw string) []Insight {
	clean := stripFences(raw)
	for _, decode := range []decoder{decodeBracketSpan, decodeDocument} {
		if out, ok := decode(clean); ok {
			return out
		}
	}
	return []Insight{}
}

func stripFences(s string) string {
	return strings.TrimSpace(fenceStripper.Replace(s))
}

// decodeBracketSpan parses the text between the first '[' and the last ']'.
// A reply that is a JSON object as a whole is left to decodeDocument so
// arrays nested inside it are not mistaken for the insight list.
func decodeBracketSpan(clean string) ([]Insight, bool) {
	if gjson.Valid(clean) && gjson.Parse(clean).IsObject() {
		return nil, false
	}
	i := strings.IndexByte(clean, '[')
	j := strings.LastIndexByte(clean, ']')
	if i < 0 || j <= i {
		return nil, false
	}
	span := clean[i : j+1]
	if !gjson.Valid(span) {
		return nil, false
	}
	return fromCandidates(gjson.Parse(span)), true
}

// decodeDocument parses the whole text and dispatches on its shape.
func decodeDocument(clean string) ([]Insight, bool) {
	if !gjson.Valid(clean) {
		return nil, false
	}
	doc := gjson.Parse(clean)
	switch {
	case doc.IsArray():
		return fromCandidates(doc), true
	case !doc.IsObject():
		return []Insight{}, true
	}

	if v := doc.Get("insights"); truthy(v) {
		return fromCandidates(v), true
	}
	if v := doc.Get("advice"); truthy(v) {
		return fromAdviceList(v), true
	}
	if truthy(doc.Get("financialAnalysis")) || allSectionsCommented(doc) {
		return fromAnalysis(doc), true
	}
	if v := doc.Get("insightSummary"); truthy(v) {
		return fromCandidates(v), true
	}
	return []Insight{fromObject(doc)}, true
}

// fromCandidates normalises every element of an array; a lone object counts as one candidate.
func fromCandidates(v gjson.Result) []Insight {
	if v.IsObject() {
		return []Insight{fromObject(v)}
	}
	out := []Insight{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, el gjson.Result) bool {
		switch {
		case el.IsObject():
			out = append(out, fromObject(el))
		case el.Type == gjson.String:
			out = append(out, FromAdvice(el.Str))
		}
		return true
	})
	return out
}

func fromAdviceList(v gjson.Result) []Insight {
	out := []Insight{}
	if v.Type == gjson.String {
		return append(out, FromAdvice(v.Str))
	}
	v.ForEach(func(_, el gjson.Result) bool {
		if el.Type == gjson.String {
			out = append(out, FromAdvice(el.Str))
		}
		return true
	})
	return out
}

func fromObject(o gjson.Result) Insight {
	kind := firstText(o, "type", "metric")
	title := firstText(o, "title", "metric")
	if title == "" {
		title = defaultTitle
	}
	msg := firstText(o, "message", "interpretation", "comment")
	if msg == "" {
		msg = defaultMessage
	}
	return Insight{
		Type:       ClassifyType(kind),
		Title:      title,
		Message:    msg,
		Severity:   ClassifySeverity(firstText(o, "severity")),
		Actionable: actionable(o.Get("actionable")),
		Category:   firstText(o, "category"),
	}
}

// fromAnalysis emits one insight per commented section, in document order.
func fromAnalysis(doc gjson.Result) []Insight {
	if summary := doc.Get("insightSummary"); summary.IsArray() {
		return fromCandidates(summary)
	}
	sections := doc
	if fa := doc.Get("financialAnalysis"); fa.IsObject() {
		sections = fa
	}

	out := []Insight{}
	sections.ForEach(func(key, section gjson.Result) bool {
		comment := section.Get("comment")
		if !section.IsObject() || comment.Type != gjson.String || comment.Str == "" {
			return true
		}
		title := sectionTitle(key.Str)
		if title == "" {
			title = defaultTitle
		}
		out = append(out, Insight{
			Type:       ClassifyType(key.Str),
			Title:      title,
			Message:    comment.Str,
			Severity:   SeverityMedium,
			Actionable: true,
		})
		return len(out) < maxAnalysisSection
	})
	return out
}

func allSectionsCommented(doc gjson.Result) bool {
	seen := false
	all := true
	doc.ForEach(func(_, section gjson.Result) bool {
		seen = true
		if !section.IsObject() || section.Get("comment").Type != gjson.String {
			all = false
			return false
		}
		return true
	})
	return seen && all
}

// sectionTitle turns "spendingTrendAnalysis" into "Spending Trend".
func sectionTitle(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	title := strings.TrimSuffix(b.String(), "Analysis")
	return strings.TrimSpace(title)
}

// firstText returns the first field that holds a non-empty string or a non-zero number.
func firstText(o gjson.Result, fields ...string) string {
	for _, f := range fields {
		v := o.Get(f)
		switch v.Type {
		case gjson.String:
			if v.Str != "" {
				return v.Str
			}
		case gjson.Number:
			if v.Num != 0 {
				return v.Raw
			}
		}
	}
	return ""
}

// actionable is true unless the field explicitly says otherwise.
func actionable(v gjson.Result) bool {
	switch v.Type {
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "false", "no", "0":
			return false
		}
	}
	return true
}

// truthy mirrors the loose "field is set" test: present and not null, false, 0 or "".
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	}
	return v.Exists()
}
