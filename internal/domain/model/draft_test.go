package model

import (
	"strings"
	"testing"
	"time"
)

func TestSplitTitleBody(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		raw       string
		wantTitle string
		wantBody  string
	}{
		{"empty", "", "", ""},
		{"whitespace only", " \n\t\n ", "", ""},
		{"no newline", "  信頼の再構築  ", "信頼の再構築", ""},
		{"title and body", "Title\nBody line", "Title", "Body line"},
		{"blank lines after title", "Title\n\n\n  \nBody\n\nmore", "Title", "Body\n\nmore"},
		{"leading blank lines before title", "\n\n  Title  \n\nBody", "Title", "Body"},
		{"crlf", "Title\r\n\r\nBody\r\nline2", "Title", "Body\nline2"},
		{"bare cr", "Title\r\rBody", "Title", "Body"},
		{"vertical tab and form feed", "Title\v\fBody\fline2", "Title", "Body\nline2"},
		{"unicode line separator", "Title\u2028Body\u2029line2", "Title", "Body\nline2"},
		{"next line", "Title\u0085Body", "Title", "Body"},
		{"record separator", "Title\x1eBody", "Title", "Body"},
		{"trailing whitespace trimmed", "T\nBody  \n\n", "T", "Body"},
		{"title only with trailing newline", "Title\n", "Title", ""},
	}
	for _, tc := range cases {
		title, body := SplitTitleBody(tc.raw)
		if title != tc.wantTitle || body != tc.wantBody {
			t.Fatalf("%s: got (%q, %q), want (%q, %q)", tc.name, title, body, tc.wantTitle, tc.wantBody)
		}
	}
}

func TestSplitTitleBody_Idempotent(t *testing.T) {
	t.Parallel()
	raws := []string{
		"Title\nBody",
		"\n\nTitle\n\n\nBody\n\nSecond paragraph\n",
		"Only a title",
		"信頼の再構築\n\n" + strings.Repeat("あ", 2000),
	}
	for _, raw := range raws {
		title, body := SplitTitleBody(raw)
		t2, b2 := SplitTitleBody(title + "\n\n" + body)
		if t2 != title || b2 != body {
			t.Fatalf("not idempotent for %q: (%q,%q) -> (%q,%q)", raw, title, body, t2, b2)
		}
	}
}

func TestCountChars_CountsRunesAndNewlines(t *testing.T) {
	t.Parallel()
	if n := CountChars("あい\nう"); n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
	if n := CountChars(""); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestLengthBand_Accepts(t *testing.T) {
	t.Parallel()
	b := DefaultBand
	cases := []struct {
		n    int
		want bool
	}{
		{1799, false},
		{1800, true},
		{2000, true},
		{2200, true},
		{2201, false},
	}
	for _, tc := range cases {
		body := strings.Repeat("字", tc.n)
		if got := b.Accepts("title", body); got != tc.want {
			t.Fatalf("len %d: got %v, want %v", tc.n, got, tc.want)
		}
	}
	if b.Accepts("", strings.Repeat("字", 2000)) {
		t.Fatal("empty title must be rejected")
	}
	if (LengthBand{Low: 0, High: 10}).Accepts("t", "") {
		t.Fatal("empty body must be rejected even when the band allows 0")
	}
}

func TestNewAttempt(t *testing.T) {
	t.Parallel()
	a := NewAttempt("fix it", "T\n\nあいう")
	if a.Title != "T" || a.Body != "あいう" || a.BodyLength != 3 || a.Corrective != "fix it" {
		t.Fatalf("unexpected attempt: %+v", a)
	}
}

func TestNewOutput_MetaAndFull(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("JST", 9*3600)
	at := time.Date(2026, 10, 19, 9, 5, 0, 0, loc)
	o := NewOutput("題名", "本文です", at)

	if o.Meta != "文字数: 4  |  出力日時: 2026-10-19 09:05" {
		t.Fatalf("meta = %q", o.Meta)
	}
	if o.Full != "題名\n"+o.Meta+"\n\n本文です" {
		t.Fatalf("full = %q", o.Full)
	}
	if o.Filename() != "writer-20261019-0905.txt" {
		t.Fatalf("filename = %q", o.Filename())
	}
}
