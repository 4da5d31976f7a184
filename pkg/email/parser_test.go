package email

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePlainMessage(t *testing.T) {
	raw := "From: Promo <deals@example.com>\r\n" +
		"Subject: Cheap watches\r\n" +
		"\r\n" +
		"Buy cheap watches now!\r\n"

	msg, err := NewParser().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if msg.From != "deals@example.com" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.Subject != "Cheap watches" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Body != "Buy cheap watches now!" {
		t.Errorf("Body = %q", msg.Body)
	}
	if msg.Text() != "Cheap watches\nBuy cheap watches now!" {
		t.Errorf("Text = %q", msg.Text())
	}
}

func TestParseEncodedSubjectAndBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: =?UTF-8?B?0JrRg9C/0LjRgtC1?=\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"caf=C3=A9 meeting\r\n"

	msg, err := NewParser().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if msg.Subject != "Купите" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Body != "café meeting" {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestParseMultipartPrefersPlainText(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: Report\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=outer\r\n" +
		"\r\n" +
		"--outer\r\n" +
		"Content-Type: multipart/alternative; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"quarterly numbers attached\r\n" +
		"--inner\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>quarterly <b>numbers</b> attached</p>\r\n" +
		"--inner--\r\n" +
		"--outer\r\n" +
		"Content-Type: application/pdf\r\n" +
		"Content-Disposition: attachment; filename=report.pdf\r\n" +
		"\r\n" +
		"%PDF-1.4\r\n" +
		"--outer--\r\n"

	msg, err := NewParser().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if msg.Body != "quarterly numbers attached" {
		t.Errorf("Body = %q", msg.Body)
	}
	if msg.Attachments != 1 {
		t.Errorf("Expected 1 attachment, got %d", msg.Attachments)
	}
}

func TestParseHTMLOnly(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: Winner\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p{color:red}</style></head>" +
		"<body><p>You <b>won</b> a prize</p><script>track()</script></body></html>\r\n"

	msg, err := NewParser().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if msg.Body != "You won a prize" {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<div>one</div><div>two</div>", "one two"},
		{"<p>a &amp; b</p>", "a & b"},
		{"<style>.x{}</style>visible", "visible"},
		{"line<br/>break", "line break"},
	}

	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestFindEmailFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.eml", "a.eml", ".hidden.eml", "notes.pdf", "sub/c.txt"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("Subject: x\r\n\r\nbody\r\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindEmailFiles(dir)
	if err != nil {
		t.Fatalf("FindEmailFiles failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.eml"),
		filepath.Join(dir, "b.eml"),
		filepath.Join(dir, "sub/c.txt"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("Unexpected files (-want +got):\n%s", diff)
	}

	msg, err := NewParser().ParseFromFile(files[0])
	if err != nil {
		t.Fatalf("ParseFromFile failed: %v", err)
	}
	if msg.Text() != "x\nbody" {
		t.Errorf("Text = %q", msg.Text())
	}
}
