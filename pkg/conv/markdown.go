package conv

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

const (
	FormatRaw  = "raw"
	FormatText = "text"
	FormatHTML = "html"
)

var (
	extensions   = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags    = html.CommonFlags | html.HrefTargetBlank
	widgetPolicy = bluemonday.NewPolicy()
)

func init() {
	// Formatting the chat bubble can render; no images, scripts or styles
	widgetPolicy.AllowElements("p", "br", "b", "strong", "i", "em", "u", "s", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	widgetPolicy.AllowAttrs("href").OnElements("a")
	widgetPolicy.AllowURLSchemes("https", "http", "mailto", "tel")
	widgetPolicy.RequireNoFollowOnLinks(true)
	widgetPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

func renderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

// MarkdownToWidgetHTML renders model output as HTML safe to inject into the
// chat widget.
func MarkdownToWidgetHTML(md []byte) string {
	return strings.TrimSpace(string(widgetPolicy.SanitizeBytes(renderHTML(md))))
}

// MarkdownToText strips markdown syntax, keeping link targets inline.
func MarkdownToText(md []byte) (string, error) {
	text, err := html2text.FromString(string(renderHTML(md)), html2text.Options{
		OmitLinks: false,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// NewRenderer returns the reply transformation for format. Text rendering
// falls back to the raw reply if conversion fails.
func NewRenderer(format string) (func(string) string, error) {
	switch format {
	case "", FormatRaw:
		return func(s string) string { return s }, nil
	case FormatHTML:
		return func(s string) string { return MarkdownToWidgetHTML([]byte(s)) }, nil
	case FormatText:
		return func(s string) string {
			text, err := MarkdownToText([]byte(s))
			if err != nil || text == "" {
				return s
			}
			return text
		}, nil
	default:
		return nil, fmt.Errorf("unknown reply format: %s", format)
	}
}
