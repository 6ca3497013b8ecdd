package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"brewdash/backend/services/dashboard-service/internal/presentation"
	"brewdash/backend/services/dashboard-service/internal/reconcile"
)

const (
	defaultWriteTimeout = 10 * time.Second
	eventBuffer         = 16
)

// Conn is the subset of *websocket.Conn a session uses.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type eventKind int

const (
	eventMessage eventKind = iota
	eventResolved
	eventClosed
)

type event struct {
	kind    eventKind
	message ClientMessage
	seq     uint64
	outcome reconcile.Outcome
	err     error
}

// Session is one browser connection. Its Run loop is the only goroutine touching core.
type Session struct {
	id           uuid.UUID
	conn         Conn
	core         *reconcile.Core
	fetcher      Fetcher
	formatter    *presentation.Formatter
	sort         presentation.SortSpec
	minDate      time.Time
	events       chan event
	writeTimeout time.Duration
	logger       *zap.Logger
}

// Options configures a session.
type Options struct {
	Formatter    *presentation.Formatter
	WriteTimeout time.Duration
}

// New wraps a seeded core.
func New(conn Conn, core *reconcile.Core, fetcher Fetcher, opts Options, logger *zap.Logger) *Session {
	id := uuid.New()
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.Formatter == nil {
		opts.Formatter = presentation.NewFormatter(language.English, nil)
	}
	return &Session{
		id:           id,
		conn:         conn,
		core:         core,
		fetcher:      fetcher,
		formatter:    opts.Formatter,
		sort:         presentation.DefaultSort,
		minDate:      core.Range().Start,
		events:       make(chan event, eventBuffer),
		writeTimeout: opts.WriteTimeout,
		logger:       logger.With(zap.String("session_id", id.String())),
	}
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Run pushes the initial frame and processes events until the connection closes or
// ctx is done. Fetches run on their own goroutines and post their outcome back.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.readPump(ctx)

	if err := s.push(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			switch ev.kind {
			case eventClosed:
				s.logger.Debug("session closed", zap.Error(ev.err))
				return nil
			case eventMessage:
				if err := s.apply(ev.message); err != nil {
					if werr := s.write(Frame{Type: FrameError, Session: s.id.String(), Detail: err.Error()}); werr != nil {
						return werr
					}
					continue
				}
			case eventResolved:
				s.resolve(ev.seq, ev.outcome)
			}

			if req, ok := s.core.NextFetch(); ok {
				s.logger.Debug("range fetch issued",
					zap.Uint64("seq", req.Seq),
					zap.Time("start", req.Range.Start),
					zap.Time("end", req.Range.End),
				)
				go s.fetch(ctx, req)
			}
			if err := s.push(); err != nil {
				return err
			}
		}
	}
}

// Close tears the connection down; Run returns once the read pump notices.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Ping sends a websocket ping. Safe to call from other goroutines.
func (s *Session) Ping(messageType int) error {
	return s.conn.WriteControl(messageType, nil, time.Now().Add(s.writeTimeout))
}

var errUnknownMessage = errors.New("unknown message type")

func (s *Session) apply(msg ClientMessage) error {
	switch msg.Type {
	case MessageSetRangeStart, MessageSetRangeEnd:
		t, err := time.Parse(time.RFC3339Nano, msg.Time)
		if err != nil {
			return errors.New("time must be an RFC3339 timestamp")
		}
		if msg.Type == MessageSetRangeStart {
			s.core.SetRangeStart(t)
		} else {
			s.core.SetRangeEnd(t)
		}
	case MessageSort:
		if msg.Sort == nil {
			return errors.New("sort is required")
		}
		s.sort = *msg.Sort
	default:
		return errUnknownMessage
	}
	return nil
}

func (s *Session) resolve(seq uint64, outcome reconcile.Outcome) {
	if !s.core.Resolve(seq, outcome) {
		s.logger.Warn("ignoring outcome for unknown fetch", zap.Uint64("seq", seq))
		return
	}
	switch outcome.Kind {
	case reconcile.OutcomeError:
		s.logger.Error("range fetch failed, showing fallback", zap.Uint64("seq", seq), zap.Error(outcome.Err))
	case reconcile.OutcomeRateLimited:
		s.logger.Warn("range fetch rate limited, showing fallback", zap.Uint64("seq", seq))
	default:
		s.logger.Debug("range fetch resolved", zap.Uint64("seq", seq), zap.Int("samples", len(outcome.Series)))
	}
}

func (s *Session) fetch(ctx context.Context, req reconcile.FetchRequest) {
	outcome := s.fetcher.Fetch(ctx, req)
	select {
	case s.events <- event{kind: eventResolved, seq: req.Seq, outcome: outcome}:
	case <-ctx.Done():
	}
}

func (s *Session) readPump(ctx context.Context) {
	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case s.events <- event{kind: eventClosed, err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case s.events <- event{kind: eventMessage, message: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) push() error {
	frame := BuildFrame(s.core, s.formatter, s.sort, s.minDate)
	frame.Session = s.id.String()
	return s.write(frame)
}

// BuildFrame renders the current view of core. It consumes the pending notice.
func BuildFrame(core *reconcile.Core, f *presentation.Formatter, sort presentation.SortSpec, minDate time.Time) Frame {
	view := core.View()
	table := presentation.BuildTable(view.Display, f, sort)
	var outcome string
	if view.Outcome != 0 {
		outcome = view.Outcome.String()
	}
	return Frame{
		Type: FrameDisplay,
		Range: RangeFrame{
			Start: formatBound(view.Range.Start),
			End:   formatBound(view.Range.End),
		},
		MinDate: formatBound(minDate),
		Dirty:   view.Dirty,
		Loading: view.Loading,
		Notice:  view.Notice,
		Outcome: outcome,
		Table:   &table,
		Chart:   presentation.ChartPoints(view.Display, f),
	}
}

func (s *Session) write(frame Frame) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteJSON(frame); err != nil {
		s.logger.Info("session write failed", zap.Error(err))
		return err
	}
	return nil
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
