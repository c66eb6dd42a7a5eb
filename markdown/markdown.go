// Package markdown renders post content as HTML. It covers the subset of
// Markdown a blog post actually uses; scaffolded views call it to render
// Post.Content, and custom views are free to swap in another renderer.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reImage      = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string) {
	lines := strings.Split(md, "\n")
	inPara := false
	inList := false
	inQuote := false
	inCode := false

	closeBlocks := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
		if inQuote {
			buf.WriteString("</blockquote>")
			inQuote = false
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				buf.WriteString("</code></pre>")
				inCode = false
			} else {
				closeBlocks()
				buf.WriteString("<pre><code>")
				inCode = true
			}
			continue
		}
		if inCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteString("\n")
			continue
		}

		switch {
		case trimmed == "":
			closeBlocks()
		case strings.HasPrefix(trimmed, "### "):
			closeBlocks()
			buf.WriteString("<h3>" + inline(trimmed[4:]) + "</h3>")
		case strings.HasPrefix(trimmed, "## "):
			closeBlocks()
			buf.WriteString("<h2>" + inline(trimmed[3:]) + "</h2>")
		case strings.HasPrefix(trimmed, "# "):
			closeBlocks()
			buf.WriteString("<h1>" + inline(trimmed[2:]) + "</h1>")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if !inList {
				closeBlocks()
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>" + inline(trimmed[2:]) + "</li>")
		case strings.HasPrefix(trimmed, "> "):
			if !inQuote {
				closeBlocks()
				buf.WriteString("<blockquote>")
				inQuote = true
			}
			buf.WriteString(inline(trimmed[2:]) + " ")
		default:
			if !inPara {
				closeBlocks()
				buf.WriteString("<p>")
				inPara = true
			} else {
				buf.WriteString(" ")
			}
			buf.WriteString(inline(trimmed))
		}
	}
	if inCode {
		buf.WriteString("</code></pre>")
	}
	closeBlocks()
}

// inline escapes a line and applies inline formatting. Escaping happens
// first so user content cannot inject markup through the regexes.
func inline(s string) string {
	s = html.EscapeString(s)
	s = reImage.ReplaceAllString(s, `<img src="$2" alt="$1">`)
	s = reLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reInlineCode.ReplaceAllString(s, "<code>$1</code>")
	return s
}
