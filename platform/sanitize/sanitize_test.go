package sanitize

import (
	"strings"
	"testing"
)

func TestTextStripsMarkup(t *testing.T) {
	got := Text(`<script>alert(1)</script>Hello <b>there</b> &amp; welcome`)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Fatalf("markup or script content leaked: %q", got)
	}
	if !strings.Contains(got, "Hello there & welcome") {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestMultilineTextKeepsLines(t *testing.T) {
	got := MultilineText("first   line\n<i>second</i> line")
	if got != "first line\nsecond line" {
		t.Fatalf("got %q", got)
	}
}

func TestEmailHTMLDropsScriptsKeepsStructure(t *testing.T) {
	in := `<div style="color: #333"><p>Hi</p><ul><li>One</li></ul><script>x()</script><a href="https://example.com" onclick="x()">link</a></div>`
	got := EmailHTML(in)
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Fatalf("unsafe content kept: %q", got)
	}
	for _, want := range []string{"<p>Hi</p>", "<li>One</li>", `href="https://example.com"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestPlainText(t *testing.T) {
	doc := `<html><head><style>p{}</style></head><body><p>Hello Jane,</p><ul><li>Call</li><li>Plan</li></ul></body></html>`
	got := PlainText(doc)
	want := "Hello Jane,\n- Call\n- Plan"
	if got != want {
		t.Fatalf("PlainText = %q, want %q", got, want)
	}
}

func TestLooksComplete(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want bool
	}{
		{"full document", "<html><body><p>Hi</p></body></html>", true},
		{"fragment", "<div><p>Hi</p></div>", true},
		{"cut mid tag", "<html><body><p>Hi</p></bo", false},
		{"unclosed body", "<html><body><p>Hi</p>", false},
		{"unclosed list", "<ul><li>One</li>", false},
		{"empty", "   ", false},
	}
	for _, tc := range cases {
		if got := LooksComplete(tc.doc); got != tc.want {
			t.Errorf("%s: LooksComplete = %v, want %v", tc.name, got, tc.want)
		}
	}
}
