package visual

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// callLog records pipeline events in order across goroutines.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	c.entries = append(c.entries, s)
	c.mu.Unlock()
}

func (c *callLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.entries))
	copy(out, c.entries)
	return out
}

// fakeBackend satisfies Backend with no GPU behind it. When gate is
// non-nil, Present blocks until the test sends on it, holding a frame in
// flight.
type fakeBackend struct {
	log       *callLog
	gate      chan struct{}
	submitErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{log: &callLog{}}
}

func (b *fakeBackend) Device() hal.Device { return nil }
func (b *fakeBackend) Queue() hal.Queue   { return nil }

func (b *fakeBackend) Acquire() (hal.TextureView, error) {
	b.log.add("acquire")
	return nil, nil
}

func (b *fakeBackend) NewEncoder(string) (hal.CommandEncoder, error) {
	b.log.add("encoder")
	return nil, nil
}

func (b *fakeBackend) Clear(_ hal.CommandEncoder, _ hal.TextureView, _ gputypes.Color) error {
	b.log.add("clear")
	return nil
}

func (b *fakeBackend) Submit(hal.CommandEncoder) error {
	b.log.add("submit")
	return b.submitErr
}

func (b *fakeBackend) Present() error {
	if b.gate != nil {
		<-b.gate
	}
	b.log.add("present")
	return nil
}

// recStimulus records its prepare and render calls and the surface config
// it was prepared against.
type recStimulus struct {
	id  int
	log *callLog

	mu       sync.Mutex
	prepared []SurfaceConfig
}

func (s *recStimulus) Prepare(rc *RenderContext) error {
	s.mu.Lock()
	s.prepared = append(s.prepared, rc.Config)
	s.mu.Unlock()
	s.log.add(fmt.Sprintf("prepare %d", s.id))
	return nil
}

func (s *recStimulus) Render(hal.CommandEncoder, hal.TextureView) error {
	s.log.add(fmt.Sprintf("render %d", s.id))
	return nil
}

func (s *recStimulus) configs() []SurfaceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SurfaceConfig, len(s.prepared))
	copy(out, s.prepared)
	return out
}

func startWindow(t *testing.T, b *fakeBackend) *Window {
	t.Helper()
	w := NewWindow(b, SurfaceConfig{
		Width:  800,
		Height: 600,
		Format: gputypes.TextureFormatBGRA8Unorm,
	})
	taskDone := make(chan struct{})
	go func() {
		defer close(taskDone)
		_ = w.RunRenderTask()
	}()
	t.Cleanup(func() {
		w.Close()
		select {
		case <-taskDone:
		case <-time.After(2 * time.Second):
			t.Error("render task did not stop after Close")
		}
	})
	return w
}

// TestPresentOrdering verifies that one frame runs the full pipeline in
// order: every stimulus prepared before any renders, the clear pass first
// among draws, one submission, one present, and the ack only after the
// GPU hand-off.
func TestPresentOrdering(t *testing.T) {
	b := newFakeBackend()
	w := startWindow(t, b)

	f := NewFrame()
	a := &recStimulus{id: 0, log: b.log}
	c := &recStimulus{id: 1, log: b.log}
	f.Add(a)
	f.Add(c)

	if err := w.Present(f); err != nil {
		t.Fatalf("Present() = %v", err)
	}

	want := []string{
		"acquire",
		"prepare 0", "prepare 1",
		"encoder", "clear",
		"render 0", "render 1",
		"submit", "present",
	}
	got := b.log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("call log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call log[%d] = %q, want %q (full log %v)", i, got[i], want[i], got)
		}
	}
}

// TestSubmitBackpressure is the three-frames scenario: a producer submits
// three frames back to back without waiting for acks. The second and
// third Submit must suspend until the prior frame's ack has been posted,
// and the renderer must observe frames in submission order.
func TestSubmitBackpressure(t *testing.T) {
	b := newFakeBackend()
	b.gate = make(chan struct{})
	w := startWindow(t, b)

	const n = 3
	submitted := make(chan int, n)
	go func() {
		for i := 0; i < n; i++ {
			f := NewFrame()
			f.Add(&recStimulus{id: i, log: b.log})
			if err := w.Submit(f); err != nil {
				return
			}
			submitted <- i
		}
	}()

	// Frame 0 is accepted immediately.
	select {
	case i := <-submitted:
		if i != 0 {
			t.Fatalf("first accepted submission = %d, want 0", i)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Submit did not return")
	}

	// Frame 0 is held in Present, so its ack is not posted and frame 1
	// must stay suspended.
	select {
	case i := <-submitted:
		t.Fatalf("Submit(%d) returned before frame 0 was acknowledged", i)
	case <-time.After(50 * time.Millisecond):
	}

	// Release the frames one at a time; each release lets exactly the
	// next submission through.
	for i := 1; i < n; i++ {
		b.gate <- struct{}{}
		select {
		case got := <-submitted:
			if got != i {
				t.Fatalf("accepted submission = %d, want %d", got, i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Submit(%d) did not return after ack %d", i, i-1)
		}
	}
	b.gate <- struct{}{}

	// Drain the final ack so the log is complete before inspection.
	if err := w.WaitAck(); err != nil {
		t.Fatalf("WaitAck() = %v", err)
	}

	var renderOrder []string
	for _, e := range b.log.snapshot() {
		if len(e) > 6 && e[:6] == "render" {
			renderOrder = append(renderOrder, e)
		}
	}
	want := []string{"render 0", "render 1", "render 2"}
	if len(renderOrder) != len(want) {
		t.Fatalf("render order = %v, want %v", renderOrder, want)
	}
	for i := range want {
		if renderOrder[i] != want[i] {
			t.Fatalf("render order = %v, want %v", renderOrder, want)
		}
	}
}

// TestWaitAckLatch verifies that a producer that skips WaitAck for a few
// frames still observes a single coalesced ack afterwards.
func TestWaitAckLatch(t *testing.T) {
	b := newFakeBackend()
	w := startWindow(t, b)

	for i := 0; i < 3; i++ {
		if err := w.Submit(NewFrame()); err != nil {
			t.Fatalf("Submit(%d) = %v", i, err)
		}
	}
	if err := w.WaitAck(); err != nil {
		t.Fatalf("WaitAck() = %v", err)
	}
}

// TestCloseUnblocksPending verifies the shutdown path: Close makes
// pending and future Submit/WaitAck return ErrWindowClosed.
func TestCloseUnblocksPending(t *testing.T) {
	b := newFakeBackend()
	b.gate = make(chan struct{})
	w := startWindow(t, b)

	// Occupy the in-flight slot.
	if err := w.Submit(NewFrame()); err != nil {
		t.Fatalf("Submit() = %v", err)
	}

	errs := make(chan error, 2)
	go func() { errs <- w.Submit(NewFrame()) }()
	go func() { errs <- w.WaitAck() }()

	time.Sleep(20 * time.Millisecond)
	w.Close()
	close(b.gate)

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrWindowClosed) {
				t.Errorf("pending call returned %v, want ErrWindowClosed", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("pending call did not unblock after Close")
		}
	}

	if err := w.Submit(NewFrame()); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("Submit after Close = %v, want ErrWindowClosed", err)
	}
	if err := w.WaitAck(); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("WaitAck after Close = %v, want ErrWindowClosed", err)
	}
}

// TestWaitAckAfterCloseIgnoresStaleAck verifies that an acknowledgement
// latched while the window shuts down never masks the closed state: once
// Close has run, WaitAck reports ErrWindowClosed even with an unconsumed
// ack sitting in the slot.
func TestWaitAckAfterCloseIgnoresStaleAck(t *testing.T) {
	b := newFakeBackend()
	w := NewWindow(b, SurfaceConfig{Width: 64, Height: 64, Format: gputypes.TextureFormatBGRA8Unorm})

	w.acks <- struct{}{}
	w.Close()

	// Repeat so both ready select cases get exercised.
	for i := 0; i < 20; i++ {
		if err := w.WaitAck(); !errors.Is(err, ErrWindowClosed) {
			t.Fatalf("WaitAck after Close = %v, want ErrWindowClosed", err)
		}
	}
}

// TestSubmitErrorClosesWindow verifies that a failed GPU submission shuts
// the pipeline down instead of limping on with unackable frames.
func TestSubmitErrorClosesWindow(t *testing.T) {
	b := newFakeBackend()
	b.submitErr = errors.New("device lost")

	w := NewWindow(b, SurfaceConfig{Width: 64, Height: 64, Format: gputypes.TextureFormatBGRA8Unorm})
	taskErr := make(chan error, 1)
	go func() { taskErr <- w.RunRenderTask() }()

	if err := w.Submit(NewFrame()); err != nil {
		t.Fatalf("Submit() = %v", err)
	}

	select {
	case err := <-taskErr:
		if !errors.Is(err, b.submitErr) {
			t.Errorf("RunRenderTask() = %v, want wrapped %v", err, b.submitErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("render task did not exit on submission failure")
	}

	if err := w.WaitAck(); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("WaitAck after failure = %v, want ErrWindowClosed", err)
	}
	if !w.Closed() {
		t.Error("window not closed after submission failure")
	}
}

// TestReconfigureAppliesToNextFrame verifies that a resize lands on the
// frame after the one in flight, never the one being prepared.
func TestReconfigureAppliesToNextFrame(t *testing.T) {
	b := newFakeBackend()
	w := startWindow(t, b)

	s := &recStimulus{id: 0, log: b.log}

	f := NewFrame()
	f.Add(s)
	if err := w.Present(f); err != nil {
		t.Fatalf("Present() = %v", err)
	}

	w.Reconfigure(1024, 768)

	f2 := NewFrame()
	f2.Add(s)
	if err := w.Present(f2); err != nil {
		t.Fatalf("Present() = %v", err)
	}

	cfgs := s.configs()
	if len(cfgs) != 2 {
		t.Fatalf("prepare count = %d, want 2", len(cfgs))
	}
	if cfgs[0].Width != 800 || cfgs[0].Height != 600 {
		t.Errorf("first frame config = %dx%d, want 800x600", cfgs[0].Width, cfgs[0].Height)
	}
	if cfgs[1].Width != 1024 || cfgs[1].Height != 768 {
		t.Errorf("second frame config = %dx%d, want 1024x768", cfgs[1].Width, cfgs[1].Height)
	}
}

// TestReconfigureIgnoresZero guards against minimized-window resize
// events.
func TestReconfigureIgnoresZero(t *testing.T) {
	b := newFakeBackend()
	w := NewWindow(b, SurfaceConfig{Width: 800, Height: 600, Format: gputypes.TextureFormatBGRA8Unorm})
	w.Reconfigure(0, 0)
	if cfg := w.Config(); cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("config after zero resize = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
}

// TestPhysicalGeometryDefaults verifies the default display geometry and
// that updates are visible to subsequent frames.
func TestPhysicalGeometryDefaults(t *testing.T) {
	b := newFakeBackend()
	w := NewWindow(b, SurfaceConfig{Width: 800, Height: 600, Format: gputypes.TextureFormatBGRA8Unorm})

	if got := w.PhysicalWidthMM(); got != DefaultPhysicalWidthMM {
		t.Errorf("PhysicalWidthMM() = %v, want %v", got, DefaultPhysicalWidthMM)
	}
	if got := w.ViewingDistanceMM(); got != DefaultViewingDistanceMM {
		t.Errorf("ViewingDistanceMM() = %v, want %v", got, DefaultViewingDistanceMM)
	}

	w.SetPhysicalWidthMM(531)
	w.SetViewingDistanceMM(600)
	if got := w.PhysicalWidthMM(); got != 531 {
		t.Errorf("PhysicalWidthMM() = %v, want 531", got)
	}
	if got := w.ViewingDistanceMM(); got != 600 {
		t.Errorf("ViewingDistanceMM() = %v, want 600", got)
	}
}
