package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// SplitTitleBody splits raw model output into a title and a body.
//
// Rules, applied to the trimmed text:
//   - empty input gives ("", "")
//   - the first line, trimmed, is the title
//   - blank lines directly after the title are dropped
//   - the remaining lines are joined with "\n" and trimmed to form the body
//   - without a line break the body is ""
//
// Line breaks are "\n", "\r\n", "\r", "\v", "\f", the separators
// U+001C..U+001E, NEL (U+0085), U+2028 and U+2029.
func SplitTitleBody(raw string) (title, body string) {
	text := strings.TrimSpace(normalizeNewlines(raw))
	if text == "" {
		return "", ""
	}
	lines := strings.Split(text, "\n")
	title = strings.TrimSpace(lines[0])

	rest := lines[1:]
	for len(rest) > 0 && strings.TrimSpace(rest[0]) == "" {
		rest = rest[1:]
	}
	body = strings.TrimSpace(strings.Join(rest, "\n"))
	return title, body
}

var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\v", "\n",
	"\f", "\n",
	"\x1c", "\n",
	"\x1d", "\n",
	"\x1e", "\n",
	"\u0085", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
)

func normalizeNewlines(s string) string {
	return lineBreaks.Replace(s)
}

// CountChars counts Unicode code points; newlines count.
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

// LengthBand is an inclusive target range for the body length.
type LengthBand struct {
	Low  int
	High int
}

var DefaultBand = LengthBand{Low: 1800, High: 2200}

func (b LengthBand) Contains(n int) bool {
	return b.Low <= n && n <= b.High
}

// Accepts is the acceptance predicate for one generation attempt.
func (b LengthBand) Accepts(title, body string) bool {
	return title != "" && body != "" && b.Contains(CountChars(body))
}

// GenerationAttempt is one round trip against the generator.
type GenerationAttempt struct {
	Corrective string // empty for the initial attempt
	RawOutput  string
	Title      string
	Body       string
	BodyLength int
}

func NewAttempt(corrective, raw string) GenerationAttempt {
	title, body := SplitTitleBody(raw)
	return GenerationAttempt{
		Corrective: corrective,
		RawOutput:  raw,
		Title:      title,
		Body:       body,
		BodyLength: CountChars(body),
	}
}

// Output is what the user sees and copies.
type Output struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Meta        string    `json:"meta"`
	Full        string    `json:"full"`
	Length      int       `json:"length"`
	Attempts    int       `json:"attempts"`
	Accepted    bool      `json:"accepted"`
	GeneratedAt time.Time `json:"generated_at"`
}

const metaTimeLayout = "2006-01-02 15:04"

func NewOutput(title, body string, at time.Time) *Output {
	n := CountChars(body)
	meta := fmt.Sprintf("文字数: %d  |  出力日時: %s", n, at.Format(metaTimeLayout))
	return &Output{
		Title:       title,
		Body:        body,
		Meta:        meta,
		Full:        strings.TrimSpace(title + "\n" + meta + "\n\n" + body),
		Length:      n,
		GeneratedAt: at,
	}
}

// Filename is the suggested name for the downloaded text.
func (o *Output) Filename() string {
	return "writer-" + o.GeneratedAt.Format("20060102-1504") + ".txt"
}
