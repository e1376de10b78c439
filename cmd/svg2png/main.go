// Command svg2png converts SVG files to PNG images.
//
// Usage:
//
//	svg2png logo.svg                      # writes logo.png at scale 2
//	svg2png -scale 4 -o out logo.svg      # writes out/logo.png
//	svg2png -i logo.svg                   # interactive: +, -, <n>, save, reload, quit
//	svg2png -watch -preview logo.svg      # converts again on every change
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/benoitkugler/svg2png/svgconv"
	"github.com/benoitkugler/svg2png/svgdraw"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/fsnotify/fsnotify"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "svg2png: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout *os.File) (err error) {
	fs := flag.NewFlagSet("svg2png", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML or TOML config file")
	scale := fs.Int("scale", 0, "initial scale (default 2)")
	outDir := fs.String("o", "", "output directory (default .)")
	preview := fs.Bool("preview", false, "show the PNG in the terminal (iTerm2 only)")
	watch := fs.Bool("watch", false, "convert again when the file changes")
	interactive := fs.Bool("i", false, "read commands from stdin")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	errorMode := fs.String("error-mode", "", "unsupported elements: ignore, warn or strict")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: svg2png [flags] file.svg\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one SVG file")
	}
	path := fs.Arg(0)

	cfg := svgconv.DefaultConfig()
	if *configPath != "" {
		if cfg, err = svgconv.LoadConfigFile(*configPath); err != nil {
			return err
		}
	}
	if *scale > 0 {
		cfg.InitialScale = *scale
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *errorMode != "" {
		cfg.ErrorMode = *errorMode
	}
	cfg.Preview = cfg.Preview || *preview

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	mode, err := svgicon.ParseErrorMode(cfg.ErrorMode)
	if err != nil {
		return err
	}
	session, err := svgconv.NewSession(
		svgconv.WithConfig(cfg),
		svgconv.WithBackend(svgdraw.Backend{ErrorMode: mode, Logger: logger}),
		svgconv.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(ctx) }()
	defer func() {
		session.Close()
		if e := <-runErr; e != nil && !errors.Is(e, context.Canceled) && err == nil {
			err = e
		}
	}()

	// stdin belongs to the command reader in interactive mode
	var tty *os.File
	if f, ok := stdin.(*os.File); ok && !*interactive {
		tty = f
	}
	con := newConsole(stdout, tty, cfg.Preview)
	unsubscribe := session.Subscribe(con.update)
	defer unsubscribe()

	switch {
	case *interactive:
		return interact(ctx, session, path, stdin, con)
	case *watch:
		return watchFile(ctx, session, path)
	default:
		return convertOnce(ctx, session, path)
	}
}

// convertOnce loads path and exports the result
func convertOnce(ctx context.Context, s *svgconv.Session, path string) error {
	if err := s.LoadFile(path); err != nil {
		return err
	}
	st, err := s.Wait(ctx)
	if err != nil {
		return err
	}
	if st.Err != nil {
		return st.Err
	}
	return s.Download()
}

// command is one line of the interactive mode
type command struct {
	name  string // "scale", "save", "reload", "quit", "help"
	scale int
}

func parseCommand(line string, current int) (command, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "+":
		return command{name: "scale", scale: current + 1}, nil
	case "-":
		return command{name: "scale", scale: current - 1}, nil
	case "s", "save":
		return command{name: "save"}, nil
	case "r", "reload":
		return command{name: "reload"}, nil
	case "q", "quit", "exit":
		return command{name: "quit"}, nil
	case "?", "h", "help", "":
		return command{name: "help"}, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return command{}, fmt.Errorf("unknown command %q", line)
	}
	return command{name: "scale", scale: n}, nil
}

const interactiveHelp = `commands:
  +, -     increase or decrease the scale
  <n>      set the scale
  save     export the PNG
  reload   read the file again
  quit     exit`

func interact(ctx context.Context, s *svgconv.Session, path string, stdin io.Reader, con *console) error {
	// The reader can't be interrupted while blocked in Scan: after quit,
	// it returns with the next line or at EOF, which is the process exit
	// for a terminal.
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := s.LoadFile(path); err != nil {
		con.errorf("%v", err)
	}
	con.println(interactiveHelp)
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}
		st, err := s.Wait(ctx)
		if err != nil {
			return err
		}
		cmd, err := parseCommand(line, st.Scale.Current)
		if err != nil {
			con.errorf("%v", err)
			continue
		}
		switch cmd.name {
		case "scale":
			if !st.ScaleEnabled() {
				con.errorf("no image loaded")
				continue
			}
			err = s.SetScale(cmd.scale)
		case "save":
			err = s.Download()
		case "reload":
			err = s.LoadFile(path)
		case "quit":
			return nil
		case "help":
			con.println(interactiveHelp)
		}
		if errors.Is(err, svgconv.ErrClosed) {
			return err
		}
		if err != nil {
			con.errorf("%v", err)
		}
	}
}

// watchFile converts path, then converts it again each time it is written.
// Every new result is exported.
func watchFile(ctx context.Context, s *svgconv.Session, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// editors often replace the file: watch its directory
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	rendered := make(chan struct{}, 1)
	var last *svgconv.RasterResult
	unsubscribe := s.Subscribe(func(st svgconv.State) {
		if st.Result != nil && st.Result != last && !st.Rendering() {
			last = st.Result
			select {
			case rendered <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	load := func() error {
		err := s.LoadFile(path)
		if errors.Is(err, svgconv.ErrClosed) {
			return err
		}
		return nil // reported by the session
	}
	if err := load(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := load(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watching", "path", abs, "err", err)
		case <-rendered:
			_ = s.Download() // logged by the exporter
		}
	}
}
