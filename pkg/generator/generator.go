// Package generator produces synthetic labeled mail for training and
// benchmarking.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/zpam/hamspam/pkg/learning"
)

// Message is one synthetic mail with its true label
type Message struct {
	Label   learning.Label
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
	ID      int64
}

// Text returns the classifiable text, subject then body
func (m Message) Text() string {
	return m.Subject + "\n" + m.Body
}

// EML renders the message as an RFC 5322 mail
func (m Message) EML() string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMessage-ID: <%d@generator.local>\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.From,
		m.To,
		m.Subject,
		m.Date.Format(time.RFC1123Z),
		m.ID,
		strings.ReplaceAll(m.Body, "\n", "\r\n"),
	)
}

// Generator builds random spam and ham messages from fixed vocabularies.
// It is not safe for concurrent use.
type Generator struct {
	rand *rand.Rand
	now  time.Time
}

// New creates a generator. Equal seeds produce equal sequences.
func New(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Spam generates one spam message
func (g *Generator) Spam() Message {
	subject := g.pick(spamSubjects)
	if g.rand.Float64() < 0.5 {
		subject = strings.ToUpper(subject)
	}
	if g.rand.Float64() < 0.3 {
		subject = fmt.Sprintf("%s - %s", subject, strings.ToUpper(g.pick(spamKeywords)))
	}

	link := fmt.Sprintf("http://%s/%s", g.pick(spamDomains), g.pick(spamPaths))
	body := fmt.Sprintf(g.pick(spamBodies), link)

	return g.message(learning.Spam,
		fmt.Sprintf("%s@%s", g.pick(spamUsers), g.pick(spamDomains)),
		subject, body)
}

// Ham generates one legitimate message
func (g *Generator) Ham() Message {
	name := g.pick(names)
	parts := strings.Fields(strings.ToLower(name))
	sender := fmt.Sprintf("%s.%s@%s", parts[0], parts[1], g.pick(hamDomains))

	subject := g.pick(hamSubjects)
	body := fmt.Sprintf(g.pick(hamBodies), g.pick(names), name)

	return g.message(learning.Ham, sender, subject, body)
}

// Corpus generates count messages, about spamRatio of them spam, in
// shuffled order
func (g *Generator) Corpus(count int, spamRatio float64) []Message {
	spamCount := int(float64(count) * spamRatio)

	out := make([]Message, 0, count)
	for i := 0; i < count; i++ {
		if i < spamCount {
			out = append(out, g.Spam())
		} else {
			out = append(out, g.Ham())
		}
	}

	g.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *Generator) message(label learning.Label, from, subject, body string) Message {
	return Message{
		Label:   label,
		From:    from,
		To:      fmt.Sprintf("%s@%s", g.pick(recipientUsers), g.pick(recipientDomains)),
		Subject: subject,
		Body:    body,
		Date:    g.now.Add(-time.Duration(g.rand.Intn(365*24)) * time.Hour),
		ID:      g.rand.Int63(),
	}
}

func (g *Generator) pick(items []string) string {
	return items[g.rand.Intn(len(items))]
}
