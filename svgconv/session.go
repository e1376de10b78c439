package svgconv

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// inboxSize is the number of events buffered before posters block.
const inboxSize = 16

// Session owns the state of one conversion. Run executes its event
// loop; the other methods may be called from any goroutine.
//
// Loads and scale changes are turned into events and applied in order
// by the loop. Renders run on their own goroutines and post their
// completion back; only the completion of the latest request is kept.
type Session struct {
	loader     *Loader
	resolver   *Resolver
	rasterizer *Rasterizer
	exporter   *Exporter
	logger     *slog.Logger

	inbox     chan Event
	closing   chan struct{} // closed by Close
	closeOnce sync.Once
	done      chan struct{} // closed when the loop stops
	finished  chan struct{} // closed once every render has returned

	loadSeq atomic.Uint64
	renders sync.WaitGroup

	mu       sync.Mutex
	started  bool
	snapshot State
	subs     map[int]func(State)
	nextSub  int
}

// NewSession returns a session ready to Run. WithBackend is required.
func NewSession(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.backend == nil {
		return nil, errors.New("svgconv: no backend")
	}
	return &Session{
		loader:     NewLoader(o.logger),
		resolver:   NewResolver(o.backend),
		rasterizer: NewRasterizer(o.backend, o.logger),
		exporter:   NewExporter(o.saver, o.logger),
		logger:     o.logger.With("component", "session"),
		inbox:      make(chan Event, inboxSize),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
		finished:   make(chan struct{}),
		snapshot:   NewState(o.maxOutputWidth, o.initialScale, o.defaultMaxScale),
		subs:       make(map[int]func(State)),
	}, nil
}

// Run applies events until ctx is done or Close is called. It then
// cancels the in-flight renders and waits for them before returning.
// Run may only be called once.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("svgconv: session already running")
	}
	s.started = true
	state := s.snapshot
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		close(s.done)
		s.renders.Wait()
		close(s.finished)
	}()

	var waiters []chan State
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closing:
			return nil
		case ev := <-s.inbox:
			if w, ok := ev.(waitEvent); ok {
				waiters = append(waiters, w.reply)
			} else {
				prev := state
				state = Apply(state, ev)
				s.trace(prev, state, ev)
				if state.Pending.Token != 0 && state.Pending.Token != prev.Pending.Token {
					s.startRender(ctx, state.Pending)
				}
				s.publish(state)
			}
			if !state.Rendering() {
				for _, reply := range waiters {
					reply <- state
				}
				waiters = nil
			}
		}
	}
}

// Close stops the event loop and waits for Run to return.
// It is safe to call Close several times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.closing) })
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.finished
	}
	return nil
}

func (s *Session) trace(prev, next State, ev Event) {
	switch ev := ev.(type) {
	case SourceLoaded:
		if next.Pending.Token == prev.Pending.Token {
			s.logger.Debug("stale load ignored", "seq", ev.Seq)
			return
		}
		s.logger.Info("source loaded", "name", ev.Source.Name,
			"size", ev.Dimensions.IntrinsicSize, "method", ev.Dimensions.Method,
			"scale", next.Scale.Current, "max_scale", next.Scale.Max)
	case SourceRejected:
		if next.LoadSeq != ev.Seq {
			return
		}
		s.logger.Warn("source rejected", "err", ev.Err)
	case RenderFailed:
		if next.Discarded == prev.Discarded {
			s.logger.Warn("render failed", "token", ev.Token, "err", ev.Err)
		}
	}
	if next.Discarded > prev.Discarded {
		s.logger.Debug("stale render discarded", "discarded", next.Discarded)
	}
}

func (s *Session) startRender(ctx context.Context, req RenderRequest) {
	s.logger.Debug("render requested", "token", req.Token, "size", req.Size, "scale", req.Scale)
	s.renders.Add(1)
	go func() {
		defer s.renders.Done()
		var ev Event
		res, err := s.rasterizer.RenderSize(ctx, req.Markup, req.Size, req.Scale)
		if err != nil {
			ev = RenderFailed{Token: req.Token, Err: err}
		} else {
			ev = RenderDone{Token: req.Token, Result: res}
		}
		select {
		case s.inbox <- ev:
		case <-s.done:
		}
	}()
}

func (s *Session) publish(state State) {
	s.mu.Lock()
	s.snapshot = state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// post queues ev, failing once the session is closed
func (s *Session) post(ev Event) error {
	select {
	case <-s.closing:
		return ErrClosed
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- ev:
		return nil
	case <-s.closing:
		return ErrClosed
	case <-s.done:
		return ErrClosed
	}
}

// Subscribe registers fn to receive the state after every event.
// fn runs on the event loop: it must not block, nor call Session methods
// other than State.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns the state after the last applied event.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Load reads a new source from r and resolves its size, then posts
// the outcome to the loop. A later load supersedes this one, even if it
// completes first. The returned error is the load failure, if any.
func (s *Session) Load(name string, r io.Reader) error {
	seq := s.loadSeq.Add(1)
	doc, err := s.loader.Load(name, r)
	return s.submit(seq, doc, err)
}

// LoadFile is like Load, reading the file at path.
func (s *Session) LoadFile(path string) error {
	seq := s.loadSeq.Add(1)
	doc, err := s.loader.LoadFile(path)
	return s.submit(seq, doc, err)
}

func (s *Session) submit(seq uint64, doc SourceDocument, err error) error {
	if err != nil {
		if perr := s.post(SourceRejected{Seq: seq, Err: err}); perr != nil {
			return perr
		}
		return err
	}
	dims, err := s.resolver.Resolve(doc.Markup)
	if err != nil {
		if perr := s.post(SourceRejected{Seq: seq, Source: &doc, Err: err}); perr != nil {
			return perr
		}
		return err
	}
	return s.post(SourceLoaded{Seq: seq, Source: doc, Dimensions: dims})
}

// waitEvent is queued by Wait; it is handled by the loop, never by Apply.
type waitEvent struct {
	reply chan State // buffered
}

func (waitEvent) isEvent() {}

// Wait returns the state once the events posted before the call have
// been applied and no render is pending.
func (s *Session) Wait(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := s.post(waitEvent{reply: reply}); err != nil {
		return State{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-s.done:
		return State{}, ErrClosed
	}
}

// SetScale requests a new scale; it is clamped into the current bounds.
func (s *Session) SetScale(n int) error {
	return s.post(ScaleChanged{Scale: n})
}

// Download exports the current result under the name derived from
// its source. Without result, an *ExportError is returned.
func (s *Session) Download() error {
	st := s.State()
	var res RasterResult
	if st.Result != nil {
		res = *st.Result
	}
	return s.exporter.Download(res, st.ResultName)
}
