package dispatcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/vimcore/internal/dispatcher"
)

type nsHandler struct {
	seen []string
}

func (h *nsHandler) Namespace() string { return "cursor" }

func (h *nsHandler) CanHandle(name string) bool { return name != "cursor.unknown" }

func (h *nsHandler) Handle(_ context.Context, call dispatcher.Call) error {
	h.seen = append(h.seen, call.Handler)
	return nil
}

func TestDispatchNoHandler(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	err := d.Dispatch(context.Background(), dispatcher.NewCall("unknown.action"))
	if !errors.Is(err, dispatcher.ErrNoHandler) {
		t.Errorf("err = %v, want ErrNoHandler", err)
	}
	if err := d.Dispatch(context.Background(), dispatcher.Call{}); !errors.Is(err, dispatcher.ErrInvalidCall) {
		t.Errorf("empty call err = %v", err)
	}
}

func TestExactBeforeNamespace(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	ns := &nsHandler{}
	d.RegisterNamespace(ns)

	exact := false
	d.Handle("cursor.moveDown", func(context.Context, dispatcher.Call) error {
		exact = true
		return nil
	})

	ctx := context.Background()
	_ = d.Dispatch(ctx, dispatcher.NewCall("cursor.moveDown"))
	_ = d.Dispatch(ctx, dispatcher.NewCall("cursor.moveUp"))
	err := d.Dispatch(ctx, dispatcher.NewCall("cursor.unknown"))

	if !exact {
		t.Error("exact handler not used")
	}
	if diff := cmp.Diff([]string{"cursor.moveUp"}, ns.seen); diff != "" {
		t.Errorf("namespace calls (-want +got):\n%s", diff)
	}
	if !errors.Is(err, dispatcher.ErrNoHandler) {
		t.Errorf("CanHandle=false err = %v", err)
	}
	if !d.CanHandle("cursor.moveLeft") || d.CanHandle("editor.x") {
		t.Error("CanHandle wrong")
	}
}

func TestFallback(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	var got string
	d.SetFallback(func(_ context.Context, c dispatcher.Call) error {
		got = c.Handler
		return nil
	})
	if err := d.Dispatch(context.Background(), dispatcher.NewCall("ex.write")); err != nil {
		t.Fatal(err)
	}
	if got != "ex.write" {
		t.Errorf("fallback saw %q", got)
	}
}

func TestHooks(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Handle("editor.deleteChar", func(_ context.Context, c dispatcher.Call) error {
		if c.Count() != 3 {
			return errors.New("pre hook did not rewrite the count")
		}
		return nil
	})
	d.OnPre(func(_ context.Context, c *dispatcher.Call) bool {
		if c.Handler == "editor.forbidden" {
			return false
		}
		*c = c.With("count", 3)
		return true
	})
	var postErr error
	posts := 0
	d.OnPost(func(_ context.Context, _ dispatcher.Call, err error) {
		posts++
		postErr = err
	})

	ctx := context.Background()
	if err := d.Dispatch(ctx, dispatcher.NewCall("editor.deleteChar")); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(ctx, dispatcher.NewCall("editor.forbidden")); !errors.Is(err, dispatcher.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
	if posts != 1 || postErr != nil {
		t.Errorf("post hooks ran %d times, err %v", posts, postErr)
	}
}

func TestPanicRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.Config{RecoverFromPanic: true, EnableMetrics: true})
	d.Handle("bad.handler", func(context.Context, dispatcher.Call) error {
		panic("boom")
	})
	err := d.Dispatch(context.Background(), dispatcher.NewCall("bad.handler"))
	if !errors.Is(err, dispatcher.ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}
	stats := d.Metrics().Snapshot()
	if len(stats) != 1 || stats[0].Panics != 1 || stats[0].Errors != 1 || stats[0].Calls != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMetricsOrder(t *testing.T) {
	d := dispatcher.New(dispatcher.Config{EnableMetrics: true})
	d.SetFallback(func(context.Context, dispatcher.Call) error { return nil })
	ctx := context.Background()
	for _, h := range []string{"a.x", "b.y", "b.y"} {
		_ = d.Dispatch(ctx, dispatcher.NewCall(h))
	}
	stats := d.Metrics().Snapshot()
	if len(stats) != 2 || stats[0].Handler != "b.y" || stats[0].Calls != 2 {
		t.Errorf("stats = %+v", stats)
	}
	d.Metrics().Reset()
	if len(d.Metrics().Snapshot()) != 0 {
		t.Error("Reset kept stats")
	}
	if dispatcher.NewWithDefaults().Metrics() != nil {
		t.Error("metrics enabled by default")
	}
}

func TestCallString(t *testing.T) {
	motion := dispatcher.NewCall("cursor.wordForward").With("count", 2)
	call := dispatcher.NewCall("operator.delete").With("count", 1).With("motion", motion).With("register", 'a')
	want := `operator.delete{count=1, motion=cursor.wordForward{count=2}, register='a'}`
	if got := call.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
	if m, ok := call.Motion(); !ok || m.Handler != "cursor.wordForward" {
		t.Errorf("Motion() = %v, %v", m, ok)
	}
	if call.Namespace() != "operator" || dispatcher.NewCall("plain").Namespace() != "" {
		t.Error("Namespace wrong")
	}
	if dispatcher.NewCall("x.y").Count() != 1 {
		t.Error("default count is not 1")
	}
}

func TestRecorderAndMessages(t *testing.T) {
	inner := dispatcher.NewRecorder(nil)
	rec := dispatcher.NewRecorder(inner)
	_ = rec.Dispatch(context.Background(), dispatcher.NewCall("cursor.moveDown"))
	if len(rec.Calls()) != 1 || len(inner.Calls()) != 1 {
		t.Errorf("recorded %d / forwarded %d", len(rec.Calls()), len(inner.Calls()))
	}
	if last, ok := rec.Last(); !ok || last.Handler != "cursor.moveDown" {
		t.Errorf("Last = %v", last)
	}
	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Error("Reset kept calls")
	}

	msgs := dispatcher.NewMessages(nil)
	msgs.ReportStatus("4 lines yanked")
	msgs.ReportError(dispatcher.KindParse, "not an editor command: frob")
	msgs.Bell()
	if len(msgs.All()) != 3 || len(msgs.Errors()) != 1 || msgs.Bells() != 1 {
		t.Errorf("messages = %v", msgs.All())
	}
	if got := msgs.Errors()[0].String(); got != "E(parse): not an editor command: frob" {
		t.Errorf("error string = %q", got)
	}
}
