package svgconv

import "errors"

// RenderRequest describes the render expected by the current state.
// A zero Token means no render is pending.
type RenderRequest struct {
	Token      uint64
	Markup     string
	Size       IntrinsicSize
	Scale      int
	OutputName string
}

// State is the whole state of a conversion session. It is a value:
// Apply returns an updated copy and never mutates its input.
type State struct {
	Source        *SourceDocument
	Dimensions    Dimensions
	HasDimensions bool

	Scale          ScaleState
	MaxOutputWidth int

	Result     *RasterResult
	ResultName string // export name of Result

	Pending   RenderRequest
	LastToken uint64 // last token issued
	LoadSeq   uint64 // sequence of the last applied load

	// Discarded counts the render completions dropped because
	// a newer render had been requested.
	Discarded int

	// Err is the last user visible error, cleared by the next success.
	Err error
}

// NewState returns the state of a session without source.
func NewState(maxOutputWidth, initialScale, defaultMaxScale int) State {
	if maxOutputWidth <= 0 {
		maxOutputWidth = MaxOutputWidth
	}
	return State{
		Scale:          NewScaleState(defaultMaxScale, initialScale),
		MaxOutputWidth: maxOutputWidth,
	}
}

// ScaleEnabled returns true once a result exists, meaning the
// scale input is meaningful to the user.
func (s State) ScaleEnabled() bool { return s.Result != nil }

// Rendering returns true while a render is pending.
func (s State) Rendering() bool { return s.Pending.Token != 0 }

// Event is an input of Apply.
type Event interface {
	isEvent()
}

// SourceLoaded is posted when a source was read and its size resolved.
type SourceLoaded struct {
	Seq        uint64
	Source     SourceDocument
	Dimensions Dimensions
}

// SourceRejected is posted when a load fails. Source is set when the
// file was read but its size could not be resolved.
type SourceRejected struct {
	Seq    uint64
	Source *SourceDocument
	Err    error
}

// ScaleChanged is posted when the user picks a new scale.
type ScaleChanged struct {
	Scale int
}

// RenderDone carries the result of the render identified by Token.
type RenderDone struct {
	Token  uint64
	Result RasterResult
}

// RenderFailed carries the error of the render identified by Token.
type RenderFailed struct {
	Token uint64
	Err   error
}

func (SourceLoaded) isEvent()   {}
func (SourceRejected) isEvent() {}
func (ScaleChanged) isEvent()   {}
func (RenderDone) isEvent()     {}
func (RenderFailed) isEvent()   {}

// Apply returns the state following ev.
//
// Every load and every effective scale change supersedes the pending
// render, if any: completions carrying an older token are counted in
// Discarded and otherwise ignored, so that the last request wins
// whatever the order in which renders complete. Loads are ordered by
// their sequence number in the same way.
func Apply(s State, ev Event) State {
	switch ev := ev.(type) {
	case SourceLoaded:
		if ev.Seq != 0 && ev.Seq < s.LoadSeq {
			return s
		}
		s.LoadSeq = ev.Seq
		src := ev.Source
		s.Source = &src
		s.Dimensions, s.HasDimensions = ev.Dimensions, true
		s.Scale = s.Scale.WithIntrinsicWidth(s.MaxOutputWidth, ev.Dimensions.Width)
		s.Err = nil
		return s.request()
	case SourceRejected:
		if ev.Seq != 0 && ev.Seq < s.LoadSeq {
			return s
		}
		s.LoadSeq = ev.Seq
		s.Err = ev.Err
		s.Pending = RenderRequest{}
		s.Dimensions, s.HasDimensions = Dimensions{}, false
		if errors.Is(ev.Err, ErrRead) || ev.Source == nil {
			// back to "no source loaded"
			s.Source, s.Result, s.ResultName = nil, nil, ""
			return s
		}
		src := *ev.Source
		s.Source = &src
		return s
	case ScaleChanged:
		next := s.Scale.WithScale(ev.Scale)
		if next == s.Scale {
			return s
		}
		s.Scale = next
		if s.Source == nil || !s.HasDimensions {
			return s
		}
		return s.request()
	case RenderDone:
		if ev.Token == 0 || ev.Token != s.Pending.Token {
			s.Discarded++
			return s
		}
		res := ev.Result
		s.Result, s.ResultName = &res, s.Pending.OutputName
		s.Pending = RenderRequest{}
		s.Err = nil
		return s
	case RenderFailed:
		if ev.Token == 0 || ev.Token != s.Pending.Token {
			s.Discarded++
			return s
		}
		s.Pending = RenderRequest{}
		s.Err = ev.Err
		return s
	}
	return s
}

// request issues a new render for the current source and scale
func (s State) request() State {
	s.LastToken++
	s.Pending = RenderRequest{
		Token:      s.LastToken,
		Markup:     s.Source.Markup,
		Size:       s.Dimensions.IntrinsicSize,
		Scale:      s.Scale.Current,
		OutputName: s.Source.OutputName,
	}
	return s
}
