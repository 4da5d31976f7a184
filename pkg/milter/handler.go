package milter

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/d--j/go-milter"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
	"github.com/zpam/hamspam/pkg/email"
	"github.com/zpam/hamspam/pkg/learning"
)

// Messages larger than this are classified on their first maxMessageBytes
const maxMessageBytes = 4 << 20

// Classifier classifies message text
type Classifier interface {
	Classify(ctx context.Context, text string) learning.Classification
}

// Handler implements milter.Milter for one SMTP connection
type Handler struct {
	milter.NoOpMilter
	config  config.MilterConfig
	svc     Classifier
	parser  *email.Parser
	log     zerolog.Logger
	timeout time.Duration

	// Raw message rebuilt from header and body callbacks
	raw       rawMessage
	startTime time.Time
}

// NewHandler creates a new milter handler
func NewHandler(cfg config.MilterConfig, svc Classifier, log zerolog.Logger) *Handler {
	return &Handler{
		config:  cfg,
		svc:     svc,
		parser:  email.NewParser(),
		log:     log,
		timeout: config.Millis(cfg.WriteTimeoutMs),
	}
}

// MailFrom starts a new message on the connection
func (h *Handler) MailFrom(from string, esmtpArgs string, m milter.Modifier) (*milter.Response, error) {
	h.raw.reset()
	h.startTime = time.Now()
	return milter.RespContinue, nil
}

// Header is called for each header
func (h *Handler) Header(name string, value string, m milter.Modifier) (*milter.Response, error) {
	h.raw.addHeader(name, value)
	return milter.RespContinue, nil
}

// Headers is called when all headers have been received
func (h *Handler) Headers(m milter.Modifier) (*milter.Response, error) {
	h.raw.endHeaders()
	return milter.RespContinue, nil
}

// BodyChunk is called for each body chunk
func (h *Handler) BodyChunk(chunk []byte, m milter.Modifier) (*milter.Response, error) {
	h.raw.addBody(chunk)
	return milter.RespContinue, nil
}

// EndOfMessage classifies the collected message and applies the verdict
func (h *Handler) EndOfMessage(m milter.Modifier) (*milter.Response, error) {
	result, err := h.classify()
	if err != nil {
		// Unparseable mail is passed through untouched
		h.log.Warn().Err(err).Msg("failed to parse message, accepting")
		h.raw.reset()
		return milter.RespContinue, nil
	}
	h.raw.reset()

	v := decide(h.config, result)
	for _, hdr := range v.headers {
		if err := m.AddHeader(hdr.name, hdr.value); err != nil {
			return milter.RespTempFail, fmt.Errorf("failed to add header %s: %w", hdr.name, err)
		}
	}

	h.log.Info().
		Str("label", result.Label.String()).
		Float64("score", result.Score).
		Bool("rejected", v.reject).
		Dur("elapsed", time.Since(h.startTime)).
		Msg("message classified")

	if v.reject {
		return milter.RejectWithCodeAndReason(550, v.reason)
	}
	return milter.RespContinue, nil
}

// Abort is called when the message is aborted
func (h *Handler) Abort(m milter.Modifier) error {
	h.raw.reset()
	return nil
}

func (h *Handler) classify() (learning.Classification, error) {
	msg, err := h.parser.Parse(bytes.NewReader(h.raw.bytes()))
	if err != nil {
		return learning.Classification{}, err
	}

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	return h.svc.Classify(ctx, msg.Text()), nil
}

type header struct {
	name  string
	value string
}

type verdict struct {
	headers []header
	reject  bool
	reason  string
}

// decide maps a classification to result headers and an SMTP action
func decide(cfg config.MilterConfig, result learning.Classification) verdict {
	v := verdict{
		headers: []header{
			{cfg.HeaderPrefix + "Status", result.Label.String()},
			{cfg.HeaderPrefix + "Score", fmt.Sprintf("%.4f", result.Score)},
		},
	}

	if cfg.RejectSpam && result.IsSpam() {
		v.reject = true
		v.reason = cfg.RejectMessage
		if v.reason == "" {
			v.reason = fmt.Sprintf("5.7.1 Message rejected as spam (score: %.4f)", result.Score)
		}
	}

	return v
}

// rawMessage reassembles an RFC 5322 message from milter callbacks
type rawMessage struct {
	buf       bytes.Buffer
	inBody    bool
	truncated bool
}

func (r *rawMessage) reset() {
	r.buf.Reset()
	r.inBody = false
	r.truncated = false
}

func (r *rawMessage) addHeader(name, value string) {
	r.write([]byte(name + ": " + value + "\r\n"))
}

func (r *rawMessage) endHeaders() {
	if !r.inBody {
		r.write([]byte("\r\n"))
		r.inBody = true
	}
}

func (r *rawMessage) addBody(chunk []byte) {
	r.endHeaders()
	r.write(chunk)
}

func (r *rawMessage) write(p []byte) {
	room := maxMessageBytes - r.buf.Len()
	if room <= 0 {
		r.truncated = true
		return
	}
	if len(p) > room {
		p = p[:room]
		r.truncated = true
	}
	r.buf.Write(p)
}

func (r *rawMessage) bytes() []byte {
	if !r.inBody {
		r.endHeaders()
	}
	return r.buf.Bytes()
}
