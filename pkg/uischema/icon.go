package uischema

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// iconClass matches one css class of an icon font, e.g. fa-user.
var iconClass = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// svgShapes may carry geometry attributes.
var svgShapes = []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}

var iconPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("i", "span", "svg", "g", "defs", "use", "title", "desc", "clipPath")
	p.AllowElements(svgShapes...)
	p.AllowAttrs("class", "aria-hidden").OnElements("i", "span")
	p.AllowAttrs("xmlns", "viewBox", "width", "height", "fill", "stroke", "stroke-width",
		"aria-hidden", "role", "focusable", "class").OnElements("svg")
	p.AllowAttrs("href", "xlink:href").OnElements("use")
	p.AllowAttrs("id").OnElements("defs", "g", "clipPath")
	p.AllowAttrs("d", "cx", "cy", "r", "rx", "ry", "x", "y", "x1", "y1", "x2", "y2", "points",
		"fill", "stroke", "stroke-width", "stroke-linecap", "stroke-linejoin", "class").OnElements(svgShapes...)
	return p
})

// sanitizeIcon cleans a configured icon. Markup keeps inline svg and font
// tags only; a class list keeps the tokens that are valid class names.
func sanitizeIcon(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") {
		return strings.TrimSpace(iconPolicy().Sanitize(raw))
	}
	var classes []string
	for _, c := range strings.Fields(raw) {
		if iconClass.MatchString(c) {
			classes = append(classes, c)
		}
	}
	return strings.Join(classes, " ")
}

func isMarkup(icon string) bool {
	return strings.HasPrefix(icon, "<")
}
