// Package format renders chat replies as Telegram HTML.
package format

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// CaptionLimit is the longest caption Telegram accepts on a photo.
const CaptionLimit = 1024

// Escape escapes text for HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Attachment renders att as an HTML message: a bold title (linked when a
// link is set) followed by the escaped body.
func Attachment(att chat.Attachment) string {
	var b strings.Builder
	title := strings.TrimSpace(att.Title)
	link := strings.TrimSpace(att.Link)
	switch {
	case title != "" && link != "":
		b.WriteString(`<b><a href="` + Escape(link) + `">` + Escape(title) + `</a></b>`)
	case title != "":
		b.WriteString("<b>" + Escape(title) + "</b>")
	case link != "":
		b.WriteString(Escape(link))
	}
	if body := strings.TrimSpace(att.Text); body != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Escape(body))
	}
	return b.String()
}

// Caption renders att for a photo caption, dropping body lines from the
// end until it fits CaptionLimit.
func Caption(att chat.Attachment) string {
	out := Attachment(att)
	if utf8.RuneCountInString(out) <= CaptionLimit {
		return out
	}
	lines := strings.Split(strings.TrimSpace(att.Text), "\n")
	for len(lines) > 0 {
		lines = lines[:len(lines)-1]
		att.Text = strings.Join(lines, "\n")
		if out = Attachment(att); utf8.RuneCountInString(out) <= CaptionLimit {
			return out
		}
	}
	return Attachment(chat.Attachment{Title: att.Title, Link: att.Link})
}
