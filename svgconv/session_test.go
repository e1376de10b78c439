package svgconv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = time.Millisecond
)

// startSession runs a session until the end of the test.
func startSession(t *testing.T, backend Backend, opts ...Option) *Session {
	t.Helper()
	// registered first, so it runs after Close
	t.Cleanup(leaktest.Check(t))
	opts = append([]Option{WithBackend(backend), WithLogger(discardLogger())}, opts...)
	s, err := NewSession(opts...)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
		assert.NoError(t, <-errc)
	})
	return s
}

func settled(s *Session) func() bool {
	return func() bool {
		st := s.State()
		return st.LoadSeq > 0 && !st.Rendering()
	}
}

func TestSessionConvertAndDownload(t *testing.T) {
	dir := t.TempDir()
	s := startSession(t, &fakeBackend{}, WithSaver(DirSaver{Dir: dir}))

	assert.False(t, s.State().ScaleEnabled())
	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	require.Eventually(t, func() bool { return s.State().Result != nil }, waitFor, tick)

	st := s.State()
	assert.True(t, st.ScaleEnabled())
	assert.Equal(t, 200, st.Result.OutputWidth)
	assert.Equal(t, 100, st.Result.OutputHeight)

	require.NoError(t, s.SetScale(1))
	require.Eventually(t, func() bool {
		st := s.State()
		return !st.Rendering() && st.Result.Scale == 1
	}, waitFor, tick)
	assert.Equal(t, 100, s.State().Result.OutputWidth)

	require.NoError(t, s.Download())
	data, err := os.ReadFile(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, s.State().Result.PNG, data)
}

func TestSessionScaleClamped(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	svg := `<svg viewBox="0 0 1500 10"></svg>`
	require.NoError(t, s.Load("wide.svg", strings.NewReader(svg)))
	require.Eventually(t, settled(s), waitFor, tick)
	assert.Equal(t, ScaleState{Current: 2, Max: 2}, s.State().Scale)

	require.NoError(t, s.SetScale(5))
	require.NoError(t, s.SetScale(0))
	require.Eventually(t, func() bool {
		st := s.State()
		return !st.Rendering() && st.Result != nil && st.Result.Scale == 1
	}, waitFor, tick)
	assert.Equal(t, 1500, s.State().Result.OutputWidth)
}

func TestSessionDecodeErrorKeepsResult(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	require.NoError(t, s.Load("good.svg", strings.NewReader(svgWide)))
	require.Eventually(t, func() bool { return s.State().Result != nil }, waitFor, tick)
	previous := s.State().Result

	require.NoError(t, s.Load("bad.svg", strings.NewReader(svgMalformed)))
	require.Eventually(t, func() bool { return s.State().Err != nil }, waitFor, tick)

	st := s.State()
	assert.ErrorIs(t, st.Err, ErrDecode)
	assert.Same(t, previous, st.Result)
	assert.Equal(t, "good.png", st.ResultName)
	assert.Equal(t, "bad.svg", st.Source.Name)
}

func TestSessionReadErrorResets(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	require.NoError(t, s.Load("good.svg", strings.NewReader(svgWide)))
	require.Eventually(t, func() bool { return s.State().Result != nil }, waitFor, tick)

	err := s.LoadFile(filepath.Join(t.TempDir(), "missing.svg"))
	assert.ErrorIs(t, err, ErrRead)
	require.Eventually(t, func() bool { return s.State().Source == nil }, waitFor, tick)
	st := s.State()
	assert.Nil(t, st.Result)
	assert.False(t, st.ScaleEnabled())
	assert.ErrorIs(t, st.Err, ErrRead)

	assert.ErrorIs(t, s.Download(), ErrExport)
}

func TestSessionUnresolvable(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	err := s.Load("empty.svg", strings.NewReader(`<svg></svg>`))
	assert.ErrorIs(t, err, ErrUnresolvableDimensions)
	require.Eventually(t, func() bool { return s.State().Err != nil }, waitFor, tick)
	st := s.State()
	assert.False(t, st.HasDimensions)
	assert.False(t, st.Rendering())
	assert.Nil(t, st.Result)
}

func TestSessionDiscardsStaleRenders(t *testing.T) {
	for _, newestFirst := range []bool{true, false} {
		t.Run(map[bool]string{true: "newest first", false: "oldest first"}[newestFirst], func(t *testing.T) {
			backend := &fakeBackend{}
			first, second := backend.gate(200), backend.gate(400)
			s := startSession(t, backend)

			require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
			require.NoError(t, s.SetScale(4))
			require.Eventually(t, func() bool { return len(backend.startedWidths()) == 2 }, waitFor, tick)
			assert.ElementsMatch(t, []int{200, 400}, backend.startedWidths())

			if newestFirst {
				close(second)
				require.Eventually(t, func() bool { return s.State().Result != nil }, waitFor, tick)
				close(first)
			} else {
				close(first)
				require.Eventually(t, func() bool { return s.State().Discarded == 1 }, waitFor, tick)
				assert.Nil(t, s.State().Result)
				close(second)
			}
			require.Eventually(t, func() bool {
				st := s.State()
				return st.Discarded == 1 && st.Result != nil
			}, waitFor, tick)

			st := s.State()
			assert.Equal(t, 4, st.Result.Scale)
			assert.Equal(t, 400, st.Result.OutputWidth)
			assert.False(t, st.Rendering())
		})
	}
}

func TestSessionSubscribe(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	var calls atomic.Int32
	unsubscribe := s.Subscribe(func(st State) { calls.Add(1) })

	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	// one call for the load, one for the render
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)

	unsubscribe()
	require.NoError(t, s.SetScale(3))
	require.Eventually(t, func() bool {
		st := s.State()
		return !st.Rendering() && st.Result.Scale == 3
	}, waitFor, tick)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSessionWait(t *testing.T) {
	s := startSession(t, &fakeBackend{})

	st, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Source)

	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	require.NoError(t, s.SetScale(3))
	st, err = s.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Result)
	assert.Equal(t, 3, st.Result.Scale)
	assert.False(t, st.Rendering())
}

func TestSessionWaitCanceled(t *testing.T) {
	backend := &fakeBackend{}
	gate := backend.gate(200)
	s := startSession(t, backend)

	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(gate)
}

func TestSessionCloseCancelsRenders(t *testing.T) {
	defer leaktest.Check(t)()
	backend := &fakeBackend{}
	backend.gate(200) // never released

	s, err := NewSession(WithBackend(backend), WithLogger(discardLogger()))
	require.NoError(t, err)
	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()

	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	require.Eventually(t, func() bool { return len(backend.startedWidths()) == 1 }, waitFor, tick)

	require.NoError(t, s.Close())
	require.NoError(t, <-errc)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SetScale(3), ErrClosed)
	_, err = s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Load("a.svg", strings.NewReader(svgWide)), ErrClosed)
}

func TestSessionRunStopsWithContext(t *testing.T) {
	defer leaktest.Check(t)()
	s, err := NewSession(WithBackend(&fakeBackend{}), WithLogger(discardLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.NoError(t, s.Close())
	assert.Error(t, s.Run(context.Background()))
}

func TestNewSessionRequiresBackend(t *testing.T) {
	_, err := NewSession()
	assert.Error(t, err)

	s, err := NewSession(WithBackend(&fakeBackend{}))
	require.NoError(t, err)
	assert.NoError(t, s.Close()) // never run
}

func TestSessionConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputWidth = 500
	cfg.InitialScale = 9
	s := startSession(t, &fakeBackend{}, WithConfig(cfg))

	assert.Equal(t, 9, s.State().Scale.Current)
	require.NoError(t, s.Load("logo.svg", strings.NewReader(svgWide)))
	require.Eventually(t, settled(s), waitFor, tick)
	assert.Equal(t, ScaleState{Current: 5, Max: 5}, s.State().Scale)
	assert.Equal(t, 500, s.State().Result.OutputWidth)
}
