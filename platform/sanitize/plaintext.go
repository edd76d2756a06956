package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "table": true, "ul": true, "ol": true,
}

// PlainText renders an HTML document as readable plain text, used for the
// text/plain alternative of outbound mail. Script and style content is dropped.
func PlainText(document string) string {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return Text(document)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if current := b.String(); current != "" && !strings.HasSuffix(current, "\n") && !strings.HasSuffix(current, " ") {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		}
		if n.Type == html.ElementNode && n.Data == "li" {
			ensureNewline(&b)
			b.WriteString("- ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			ensureNewline(&b)
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

func ensureNewline(b *strings.Builder) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
}

// VisibleTextLength counts the non-whitespace runes a reader would see.
// Zero means the document has no content worth sending.
func VisibleTextLength(document string) int {
	count := 0
	for _, r := range PlainText(document) {
		if r != ' ' && r != '\n' && r != '-' {
			count++
		}
	}
	return count
}

// LooksComplete reports whether an HTML document appears to have been
// emitted in full: it tokenizes cleanly and every opened html/body/table/ul/ol
// element is closed again.
func LooksComplete(document string) bool {
	trimmed := strings.TrimSpace(document)
	if trimmed == "" || !strings.HasSuffix(trimmed, ">") {
		return false
	}

	tracked := map[string]int{"html": 0, "body": 0, "table": 0, "ul": 0, "ol": 0}
	z := html.NewTokenizer(strings.NewReader(trimmed))
	for {
		switch z.Next() {
		case html.ErrorToken:
			for _, open := range tracked {
				if open != 0 {
					return false
				}
			}
			return true
		case html.StartTagToken:
			name, _ := z.TagName()
			if _, ok := tracked[string(name)]; ok {
				tracked[string(name)]++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if _, ok := tracked[string(name)]; ok {
				tracked[string(name)]--
			}
		}
	}
}
