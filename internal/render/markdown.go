// Package render turns Markdown bodies into HTML for display and feeds.
package render

import (
	"bytes"
	"html"
	"math"
	"strings"

	stripmd "github.com/writeas/go-strip-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// wordsPerMinute drives the reading time estimate
const wordsPerMinute = 200

// Renderer converts Markdown to HTML. It is stateless and safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer with GitHub flavoured extensions. Raw HTML in the
// source is passed through since content is written by trusted admins.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.TaskList,
				extension.Footnote,
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// HTML renders body. Conversion never fails the caller: if goldmark reports
// an error the escaped source is returned as a single paragraph.
func (r *Renderer) HTML(body string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "<p>" + html.EscapeString(body) + "</p>\n"
	}
	return buf.String()
}

// PlainText strips Markdown syntax from body
func PlainText(body string) string {
	return strings.TrimSpace(stripmd.Strip(body))
}

// ReadingMinutes estimates reading time, never less than one minute
func ReadingMinutes(body string) int {
	words := len(strings.Fields(PlainText(body)))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
