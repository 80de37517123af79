package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/minjae-ko/chatmarks/internal/annotations"
)

// ClassName marks the wrapper spans this package injects. Strip removes
// exactly these spans and nothing else.
const ClassName = "msg-highlight"

const classAttr = `class="` + ClassName + `"`

// Strip removes every highlight wrapper span from src while keeping its
// inner content, including wrappers nested inside other wrappers. All
// other markup passes through untouched.
func Strip(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	// One entry per currently open <span>: true when it is a wrapper
	// whose open tag was dropped and whose close tag must be too.
	var open []bool

	i := 0
	for i < len(src) {
		lt := strings.IndexByte(src[i:], '<')
		if lt < 0 {
			out.WriteString(src[i:])
			break
		}
		lt += i
		out.WriteString(src[i:lt])

		gt := strings.IndexByte(src[lt:], '>')
		if gt < 0 {
			// Unterminated tag, emit as-is.
			out.WriteString(src[lt:])
			break
		}
		gt += lt
		tag := src[lt : gt+1]

		switch {
		case isSpanOpen(tag):
			wrapper := strings.Contains(tag, classAttr)
			open = append(open, wrapper)
			if !wrapper {
				out.WriteString(tag)
			}
		case isSpanClose(tag) && len(open) > 0:
			wrapper := open[len(open)-1]
			open = open[:len(open)-1]
			if !wrapper {
				out.WriteString(tag)
			}
		default:
			out.WriteString(tag)
		}
		i = gt + 1
	}
	return out.String()
}

func isSpanOpen(tag string) bool {
	if !strings.HasPrefix(tag, "<span") {
		return false
	}
	// Reject tags like <spanner>.
	rest := tag[len("<span"):]
	return rest == ">" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}

func isSpanClose(tag string) bool {
	return tag == "</span>"
}

// Apply projects highlights onto rendered HTML. Existing wrappers are
// stripped first, so applying twice gives the same result. Each
// highlight wraps every occurrence of its text that lies entirely
// between tags; a highlight whose text no longer appears, or whose
// only matches span a tag boundary, is skipped. Highlights are applied
// in order, each one scanning the output of the previous, so a later
// highlight can land inside an earlier wrapper.
func Apply(src string, highlights []annotations.Highlight) string {
	out := Strip(src)
	for _, h := range highlights {
		out = wrapAll(out, h.Text, wrapperTag(h))
	}
	return out
}

// wrapperTag builds the open tag for one highlight's wrapper span. The
// note rides along in the title attribute so it shows on hover.
func wrapperTag(h annotations.Highlight) string {
	return fmt.Sprintf(`<span class=%q data-highlight-id=%q style="background-color: %s; cursor: pointer;" title=%q>`,
		ClassName, h.ID, h.Color, html.EscapeString(h.Note))
}

// wrapAll wraps every occurrence of text that sits entirely within a
// single text segment of src. Text segments are the runs between tags,
// so a match never crosses markup. Scanning resumes after each wrapped
// match, so the injected tags are never re-scanned.
func wrapAll(src, text, openTag string) string {
	if text == "" {
		return src
	}
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		segEnd := len(src)
		lt := strings.IndexByte(src[i:], '<')
		if lt >= 0 {
			segEnd = i + lt
		}

		seg := src[i:segEnd]
		for {
			idx := strings.Index(seg, text)
			if idx < 0 {
				out.WriteString(seg)
				break
			}
			out.WriteString(seg[:idx])
			out.WriteString(openTag)
			out.WriteString(text)
			out.WriteString("</span>")
			seg = seg[idx+len(text):]
		}

		if lt < 0 {
			break
		}
		gt := strings.IndexByte(src[segEnd:], '>')
		if gt < 0 {
			out.WriteString(src[segEnd:])
			break
		}
		out.WriteString(src[segEnd : segEnd+gt+1])
		i = segEnd + gt + 1
	}
	return out.String()
}

// Projector renders a message's markdown and projects its highlights
// in one step.
type Projector struct {
	renderer *Renderer
}

func NewProjector() *Projector {
	return &Projector{renderer: NewRenderer()}
}

// Project renders source to HTML and applies the given highlights.
func (p *Projector) Project(source string, highlights []annotations.Highlight) (string, error) {
	rendered, err := p.renderer.Render(source)
	if err != nil {
		return "", err
	}
	return Apply(rendered, highlights), nil
}
