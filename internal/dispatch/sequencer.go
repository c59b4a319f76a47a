package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/infrastructure/tracing"
	"github.com/kotche/femhealth/internal/content"
	"github.com/kotche/femhealth/internal/metrics"
	"github.com/kotche/femhealth/internal/model"
)

const (
	InterruptedMessage = "Connection Interrupted"
	timestampLayout    = "15:04:05"
)

var ErrDispatchInFlight = errors.New("a reminder is already being dispatched")

type (
	Request struct {
		Name      string
		Email     string
		DaysUntil int
		Date      string
	}

	// EmitFunc receives each transcript line as it is "sent".
	EmitFunc func(line string) error

	// DelayFunc pauses between transcript lines.
	DelayFunc func(ctx context.Context) error
)

type Sequencer struct {
	host     string
	content  content.Service
	composer Composer
	delay    DelayFunc
	now      func() time.Time
	newID    func() string
	lggr     logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type Option func(*Sequencer)

func WithHost(host string) Option {
	return func(s *Sequencer) {
		if host != "" {
			s.host = host
		}
	}
}

func WithDelay(d DelayFunc) Option {
	return func(s *Sequencer) { s.delay = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

func WithMessageID(newID func() string) Option {
	return func(s *Sequencer) { s.newID = newID }
}

func NewSequencer(svc content.Service, composer Composer, lggr logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		host:     DefaultHost,
		content:  svc,
		composer: composer,
		delay:    RandomDelay(100*time.Millisecond, 300*time.Millisecond),
		now:      time.Now,
		newID:    NewMessageID,
		lggr:     lggr.Named("dispatch"),
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch plays the handshake for req, emitting every line in order, then
// hands the message to the composer. It returns the resulting log entry.
// Interruptions are not errors: they yield a Transmitting entry after a single
// "500 Error" line. The only error is ErrDispatchInFlight.
func (s *Sequencer) Dispatch(ctx context.Context, req Request, emit EmitFunc) (model.NotificationLog, error) {
	if !s.acquire(req.Email) {
		return model.NotificationLog{}, ErrDispatchInFlight
	}
	defer s.release(req.Email)

	ctx, span := tracing.StartSpan(ctx, "dispatch.Dispatch", attribute.Int("days_until", req.DaysUntil))
	defer span.End()

	mail := s.content.EmailContent(ctx, req.Name, req.DaysUntil, req.Date)
	id := s.newID()

	entry := model.NotificationLog{
		ID:        id,
		Type:      model.LogTypeEmail,
		Subject:   mail.Subject,
		Message:   mail.Body,
		Timestamp: s.now().Format(timestampLayout),
		Status:    model.StatusTransmitting,
	}

	if err := s.run(ctx, req, mail, id, emit); err != nil {
		_ = emit(fmt.Sprintf("500 Error: %v", err))
		tracing.Fail(span, err)
		metrics.Dispatched(string(model.StatusTransmitting))
		s.lggr.Warnw("dispatch interrupted", "id", id, "err", err)

		entry.Message = InterruptedMessage
		return entry, nil
	}

	metrics.Dispatched(string(model.StatusDelivered))
	s.lggr.Infow("dispatch delivered", "id", id)

	entry.Status = model.StatusDelivered
	return entry, nil
}

func (s *Sequencer) run(ctx context.Context, req Request, mail content.EmailContent, id string, emit EmitFunc) error {
	for _, line := range Steps(s.host, req.Email, mail.Subject, id) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(line); err != nil {
			return err
		}
		if err := s.delay(ctx); err != nil {
			return err
		}
	}
	if err := s.composer.Compose(ctx, req.Email, mail.Subject, mail.Body); err != nil {
		return fmt.Errorf("failed to hand over to mail composer: %w", err)
	}
	return nil
}

// InFlight reports whether a dispatch to addr is running.
func (s *Sequencer) InFlight(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[addr]
	return ok
}

func (s *Sequencer) acquire(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[addr]; ok {
		return false
	}
	s.inFlight[addr] = struct{}{}
	return true
}

func (s *Sequencer) release(addr string) {
	s.mu.Lock()
	delete(s.inFlight, addr)
	s.mu.Unlock()
}

// RandomDelay waits a uniformly random duration in [lo, hi].
func RandomDelay(lo, hi time.Duration) DelayFunc {
	return func(ctx context.Context) error {
		d := lo
		if hi > lo {
			d += rand.N(hi - lo + 1)
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}

// NoDelay runs the transcript back to back.
func NoDelay(context.Context) error { return nil }

// NewMessageID returns a queue id like "<2K8Q...@femhealth.io>".
func NewMessageID() string {
	return fmt.Sprintf("<%s@femhealth.io>", strings.ToUpper(ksuid.New().String()))
}
