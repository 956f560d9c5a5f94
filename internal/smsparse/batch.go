package smsparse

import (
	"encoding/json"
	"runtime"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocjay1/finance-importer/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	minParagraphLen = 10
	minLineLen      = 20
)

// Message is one inbound message. It decodes from either a bare JSON string or
// an object carrying the text in "body", "text" or "message".
type Message struct {
	Body    string `json:"body,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// Content returns the first non-empty text field.
func (m Message) Content() string {
	switch {
	case m.Body != "":
		return m.Body
	case m.Text != "":
		return m.Text
	default:
		return m.Message
	}
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Message{Body: s}
		return nil
	}
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Message(p)
	return nil
}

// ParseMultiple parses every message, drops unparsed ones and orders the rest
// by date, most recent first. Candidates without a date sort last.
func (p *Parser) ParseMultiple(msgs []Message) []models.Candidate {
	results := make([]models.Candidate, len(msgs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range msgs {
		g.Go(func() error {
			results[i] = p.Parse(m.Content())
			return nil
		})
	}
	_ = g.Wait()

	parsed := results[:0]
	for _, c := range results {
		if c.Parsed {
			parsed = append(parsed, c)
		}
	}

	slices.SortStableFunc(parsed, func(a, b models.Candidate) int {
		return sortDate(b).Compare(sortDate(a))
	})
	return parsed
}

// sortDate is the extracted date, or the zero time when the message had none.
func sortDate(c models.Candidate) time.Time {
	if !c.DateFound {
		return time.Time{}
	}
	return c.Date
}

// ParseTexts is ParseMultiple over raw strings.
func (p *Parser) ParseTexts(texts []string) []models.Candidate {
	msgs := make([]Message, len(texts))
	for i, t := range texts {
		msgs[i] = Message{Body: t}
	}
	return p.ParseMultiple(msgs)
}

// ParseBulk splits a pasted blob into messages and parses them.
func (p *Parser) ParseBulk(text string) []models.Candidate {
	return p.ParseTexts(SplitMessages(text))
}

// ParseMultipleSMS parses messages with the default parser.
func ParseMultipleSMS(msgs []Message) []models.Candidate {
	return defaultParser.ParseMultiple(msgs)
}

// ParseSMSBulk splits and parses a pasted blob with the default parser.
func ParseSMSBulk(text string) []models.Candidate {
	return defaultParser.ParseBulk(text)
}

// SplitMessages segments pasted text. Blank-line separated paragraphs longer
// than 10 characters are messages; when that yields a single block, the text
// is split on single newlines instead, keeping lines longer than 20 characters.
// If the line split finds nothing, the single block is kept.
func SplitMessages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []string
	for _, b := range paragraphBreak.Split(text, -1) {
		b = strings.TrimSpace(b)
		if utf8.RuneCountInString(b) > minParagraphLen {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) != 1 {
		return blocks
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if utf8.RuneCountInString(l) > minLineLen {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return blocks
	}
	return lines
}
