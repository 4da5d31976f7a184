package email

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// Message is the classifiable content of one email
type Message struct {
	From    string
	Subject string
	Body    string

	// Parts skipped because of an attachment disposition
	Attachments int
}

// Text returns subject and body joined for classification
func (m *Message) Text() string {
	switch {
	case m.Subject == "":
		return m.Body
	case m.Body == "":
		return m.Subject
	default:
		return m.Subject + "\n" + m.Body
	}
}

// Parser extracts text from RFC 5322 messages
type Parser struct {
	// Maximum bytes read from any single part, 0 = unlimited
	MaxPartBytes int64
}

// NewParser creates a new email parser
func NewParser() *Parser {
	return &Parser{MaxPartBytes: 1 << 20}
}

// ParseFromFile parses an email from a file
func (p *Parser) ParseFromFile(path string) (*Message, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse reads a message and collects its text parts. text/plain parts are
// preferred; text/html parts are used with markup stripped only when the
// message has no plain text.
func (p *Parser) Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && (mr == nil || !message.IsUnknownCharset(err)) {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	defer mr.Close()

	msg := &Message{}

	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = mr.Header.Get("Subject")
	}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	} else {
		msg.From = mr.Header.Get("From")
	}

	var plain, htmlParts []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (part == nil || !message.IsUnknownCharset(err)) {
			// Keep what was collected from a truncated or malformed message
			if len(plain) > 0 || len(htmlParts) > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		var h message.Header
		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			h = ph.Header
		case *mail.AttachmentHeader:
			h = ph.Header
		}

		if disp, _, _ := h.ContentDisposition(); disp == "attachment" {
			msg.Attachments++
			continue
		}

		mediaType, _, err := h.ContentType()
		if err != nil || mediaType == "" {
			mediaType = "text/plain"
		}
		if !strings.HasPrefix(mediaType, "text/") {
			continue
		}

		body, err := p.readPart(part.Body)
		if err != nil {
			continue
		}

		if mediaType == "text/html" {
			htmlParts = append(htmlParts, StripHTML(body))
		} else {
			plain = append(plain, body)
		}
	}

	if len(plain) > 0 {
		msg.Body = strings.Join(plain, "\n")
	} else {
		msg.Body = strings.Join(htmlParts, "\n")
	}
	msg.Body = strings.TrimSpace(msg.Body)

	return msg, nil
}

func (p *Parser) readPart(r io.Reader) (string, error) {
	if p.MaxPartBytes > 0 {
		r = io.LimitReader(r, p.MaxPartBytes)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StripHTML returns the text content of an HTML fragment, skipping
// script and style elements
func StripHTML(content string) string {
	var b strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHiddenTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(name []byte) bool {
	switch string(name) {
	case "script", "style", "head":
		return true
	}
	return false
}

// IsEmailFile reports whether path looks like a stored message
func IsEmailFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml", ".msg", ".txt", ".email", "":
		return true
	}
	return false
}

// FindEmailFiles lists message files under dir, sorted
func FindEmailFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && !strings.HasPrefix(info.Name(), ".") && IsEmailFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
