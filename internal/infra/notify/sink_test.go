package notify

import (
	"context"
	"errors"
	"testing"
)

type fakeSink struct {
	name     string
	checkErr error
	sendErr  error
	sent     []string
}

func (f *fakeSink) Name() string                    { return f.name }
func (f *fakeSink) Check(ctx context.Context) error { return f.checkErr }
func (f *fakeSink) Send(ctx context.Context, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestMultiSink_CheckAnyAvailable(t *testing.T) {
	down := &fakeSink{name: "down", checkErr: unavailable("down", errors.New("404"))}
	up := &fakeSink{name: "up"}

	if err := NewMultiSink(down, up).Check(context.Background()); err != nil {
		t.Errorf("expected available, got %v", err)
	}

	err := NewMultiSink(down).Check(context.Background())
	if !errors.Is(err, ErrSinkUnavailable) {
		t.Errorf("expected ErrSinkUnavailable, got %v", err)
	}
}

func TestMultiSink_CheckEmpty(t *testing.T) {
	if err := NewMultiSink().Check(context.Background()); !errors.Is(err, ErrSinkUnavailable) {
		t.Errorf("expected ErrSinkUnavailable, got %v", err)
	}
}

func TestMultiSink_SendFansOut(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b", sendErr: errors.New("boom")}
	c := &fakeSink{name: "c"}

	if err := NewMultiSink(a, b, c).Send(context.Background(), "hello"); err != nil {
		t.Fatalf("expected success when one sink delivers, got %v", err)
	}
	if len(a.sent) != 1 || len(c.sent) != 1 {
		t.Errorf("expected every healthy sink to receive the message")
	}
}

func TestMultiSink_SendAllFail(t *testing.T) {
	a := &fakeSink{name: "a", sendErr: errors.New("first")}
	b := &fakeSink{name: "b", sendErr: errors.New("second")}

	err := NewMultiSink(a, b).Send(context.Background(), "hello")
	if err == nil || err.Error() != "second" {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestLogSink(t *testing.T) {
	s := NewLogSink(nil)
	if err := s.Check(context.Background()); err != nil {
		t.Errorf("log sink must always be available, got %v", err)
	}
	if err := s.Send(context.Background(), "✅ All nodes active."); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
