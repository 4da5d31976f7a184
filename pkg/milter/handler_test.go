package milter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
	"github.com/zpam/hamspam/pkg/learning"
)

type recordingClassifier struct {
	texts  []string
	result learning.Classification
}

func (r *recordingClassifier) Classify(_ context.Context, text string) learning.Classification {
	r.texts = append(r.texts, text)
	return r.result
}

func TestDecide(t *testing.T) {
	cfg := config.DefaultConfig().Milter

	tests := []struct {
		name       string
		rejectSpam bool
		message    string
		result     learning.Classification
		want       verdict
	}{
		{
			name:   "ham is tagged",
			result: learning.Classification{Label: learning.Ham, Score: 0.1},
			want: verdict{headers: []header{
				{"X-Hamspam-Status", "ham"},
				{"X-Hamspam-Score", "0.1000"},
			}},
		},
		{
			name:   "spam is tagged when rejection is off",
			result: learning.Classification{Label: learning.Spam, Score: 0.98766},
			want: verdict{headers: []header{
				{"X-Hamspam-Status", "spam"},
				{"X-Hamspam-Score", "0.9877"},
			}},
		},
		{
			name:       "spam is rejected with default reason",
			rejectSpam: true,
			result:     learning.Classification{Label: learning.Spam, Score: 0.9},
			want: verdict{
				headers: []header{
					{"X-Hamspam-Status", "spam"},
					{"X-Hamspam-Score", "0.9000"},
				},
				reject: true,
				reason: "5.7.1 Message rejected as spam (score: 0.9000)",
			},
		},
		{
			name:       "custom reject message",
			rejectSpam: true,
			message:    "5.7.1 No thanks",
			result:     learning.Classification{Label: learning.Spam, Score: 0.9},
			want: verdict{
				headers: []header{
					{"X-Hamspam-Status", "spam"},
					{"X-Hamspam-Score", "0.9000"},
				},
				reject: true,
				reason: "5.7.1 No thanks",
			},
		},
		{
			name:       "ham is never rejected",
			rejectSpam: true,
			result:     learning.Classification{Label: learning.Ham, Score: 0.8},
			want: verdict{headers: []header{
				{"X-Hamspam-Status", "ham"},
				{"X-Hamspam-Score", "0.8000"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.RejectSpam = tt.rejectSpam
			c.RejectMessage = tt.message

			got := decide(c, tt.result)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(verdict{}, header{})); diff != "" {
				t.Errorf("decide mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandlerClassifiesReassembledMessage(t *testing.T) {
	svc := &recordingClassifier{result: learning.Classification{Label: learning.Spam, Score: 0.95}}
	h := NewHandler(config.DefaultConfig().Milter, svc, zerolog.Nop())

	h.raw.addHeader("From", "promo@example.com")
	h.raw.addHeader("Subject", "Cheap pills")
	h.raw.addHeader("Content-Type", "text/plain; charset=utf-8")
	h.raw.endHeaders()
	h.raw.addBody([]byte("Order now "))
	h.raw.addBody([]byte("while stocks last"))

	result, err := h.classify()
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result != svc.result {
		t.Errorf("Unexpected result %+v", result)
	}

	want := []string{"Cheap pills\nOrder now while stocks last"}
	if diff := cmp.Diff(want, svc.texts); diff != "" {
		t.Errorf("Unexpected classified text (-want +got):\n%s", diff)
	}
}

func TestRawMessage(t *testing.T) {
	var r rawMessage

	r.addHeader("Subject", "hi")
	if got := string(r.bytes()); got != "Subject: hi\r\n\r\n" {
		t.Errorf("Header-only message = %q", got)
	}

	r.reset()
	r.addBody([]byte("body only"))
	if got := string(r.bytes()); got != "\r\nbody only" {
		t.Errorf("Body-only message = %q", got)
	}

	r.reset()
	r.addHeader("Subject", "big")
	r.addBody(bytes.Repeat([]byte("a"), maxMessageBytes))
	if r.buf.Len() != maxMessageBytes || !r.truncated {
		t.Errorf("Expected truncation at %d bytes, got %d", maxMessageBytes, r.buf.Len())
	}
	if !strings.HasPrefix(string(r.bytes()), "Subject: big\r\n\r\naaa") {
		t.Error("Truncated message lost its headers")
	}
}
