package runtime

import (
	"context"
	"testing"
	"time"
)

func TestStepGateDisabledNeverBlocks(t *testing.T) {
	g := NewStepGate(false)
	for i := 0; i < 3; i++ {
		cont, err := g.Wait(context.Background())
		if err != nil || !cont {
			t.Fatalf("disabled gate blocked: cont=%v err=%v", cont, err)
		}
	}
}

func TestStepGateContinueAndStop(t *testing.T) {
	g := NewStepGate(true)

	g.Continue()
	cont, err := g.Wait(context.Background())
	if err != nil || !cont {
		t.Fatalf("continue decision lost: cont=%v err=%v", cont, err)
	}

	g.Stop()
	cont, err = g.Wait(context.Background())
	if err != nil || cont {
		t.Fatalf("stop decision lost: cont=%v err=%v", cont, err)
	}
}

func TestStepGateBlocksUntilDecision(t *testing.T) {
	g := NewStepGate(true)
	released := make(chan bool, 1)
	go func() {
		cont, _ := g.Wait(context.Background())
		released <- cont
	}()

	select {
	case <-released:
		t.Fatal("gate released without a decision")
	case <-time.After(50 * time.Millisecond):
	}

	g.Continue()
	select {
	case cont := <-released:
		if !cont {
			t.Error("continue delivered as stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate never released")
	}
}

func TestStepGateCapacityOne(t *testing.T) {
	g := NewStepGate(true)
	// Only one decision may queue ahead; the rest drop.
	g.Continue()
	g.Continue()
	g.Continue()

	if cont, _ := g.Wait(context.Background()); !cont {
		t.Fatal("first decision lost")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if cont, err := g.Wait(ctx); err == nil || cont {
		t.Fatal("extra decisions queued past capacity")
	}
}

func TestStepGateContextCancel(t *testing.T) {
	g := NewStepGate(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cont, err := g.Wait(ctx)
	if err == nil || cont {
		t.Fatalf("cancelled wait returned cont=%v err=%v", cont, err)
	}
}
