package svgconv

import "log/slog"

// Option configures a Session.
type Option func(*options)

type options struct {
	backend         Backend
	logger          *slog.Logger
	saver           Saver
	maxOutputWidth  int
	initialScale    int
	defaultMaxScale int
}

func defaultOptions() *options {
	return &options{
		logger:          slog.Default(),
		maxOutputWidth:  MaxOutputWidth,
		initialScale:    DefaultScale,
		defaultMaxScale: DefaultMaxScale,
	}
}

// WithBackend sets the parsing and painting backend. It is required.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets the logger of the session and its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSaver sets where Download delivers PNGs.
// The default is a DirSaver on the working directory.
func WithSaver(s Saver) Option {
	return func(o *options) {
		o.saver = s
	}
}

// WithMaxOutputWidth bounds the width of the rendered images.
func WithMaxOutputWidth(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.maxOutputWidth = px
		}
	}
}

// WithInitialScale sets the scale used before any SetScale.
func WithInitialScale(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialScale = n
		}
	}
}

// WithConfig applies the session related fields of cfg.
// The saver is a DirSaver on cfg.OutputDir.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		WithMaxOutputWidth(cfg.MaxOutputWidth)(o)
		WithInitialScale(cfg.InitialScale)(o)
		if cfg.DefaultMaxScale > 0 {
			o.defaultMaxScale = cfg.DefaultMaxScale
		}
		if cfg.OutputDir != "" {
			o.saver = DirSaver{Dir: cfg.OutputDir}
		}
	}
}
