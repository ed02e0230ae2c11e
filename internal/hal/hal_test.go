package hal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kapitanov/chip8vm/internal/vm"
)

func TestKeyForRune(t *testing.T) {
	tests := []struct {
		r    rune
		want vm.Key
		ok   bool
	}{
		{'1', vm.Key1, true},
		{'4', vm.KeyC, true},
		{'q', vm.Key4, true},
		{'Q', vm.Key4, true},
		{'x', vm.Key0, true},
		{'V', vm.KeyF, true},
		{'5', 0, false},
		{' ', 0, false},
	}

	for _, tt := range tests {
		got, ok := KeyForRune(tt.r)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KeyForRune(%q) = %v, %v, want %v, %v", tt.r, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKeyLayout_CoversKeypad(t *testing.T) {
	var seen [vm.KeyCount]int
	for _, key := range keyLayout {
		seen[key]++
	}

	for key, n := range seen {
		if n != 1 {
			t.Errorf("key %X is mapped %d times, want 1", key, n)
		}
	}
}

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newTestPacer(hz int) (*Pacer, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	p := NewPacer(Config{Hz: hz})
	p.now = clock.Now
	p.sleep = clock.Sleep
	return p, clock
}

func TestPacer_Wait(t *testing.T) {
	p, clock := newTestPacer(100)

	p.Wait()
	p.Wait()
	clock.now = clock.now.Add(4 * time.Millisecond)
	p.Wait()

	want := []time.Duration{
		10 * time.Millisecond,
		10 * time.Millisecond,
		6 * time.Millisecond,
	}
	if diff := cmp.Diff(want, clock.sleeps); diff != "" {
		t.Errorf("sleeps: (-want, +got)\n%s", diff)
	}
}

func TestPacer_CatchesUpWithoutSleeping(t *testing.T) {
	p, clock := newTestPacer(100)

	p.Wait()
	clock.now = clock.now.Add(25 * time.Millisecond)
	p.Wait()
	p.Wait()

	// Still behind schedule after the stall, so neither wait sleeps.
	want := []time.Duration{10 * time.Millisecond}
	if diff := cmp.Diff(want, clock.sleeps); diff != "" {
		t.Errorf("sleeps: (-want, +got)\n%s", diff)
	}
}

func TestPacer_ResyncsAfterLongStall(t *testing.T) {
	p, clock := newTestPacer(100)

	p.Wait()
	clock.now = clock.now.Add(time.Second)
	p.Wait()

	want := []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}
	if diff := cmp.Diff(want, clock.sleeps); diff != "" {
		t.Errorf("sleeps: (-want, +got)\n%s", diff)
	}
}

func TestConfig_Period(t *testing.T) {
	tests := []struct {
		hz   int
		want time.Duration
	}{
		{hz: 1000, want: time.Millisecond},
		{hz: 0, want: time.Second / DefaultHz},
		{hz: -5, want: time.Second / DefaultHz},
	}

	for _, tt := range tests {
		if got := (Config{Hz: tt.hz}).period(); got != tt.want {
			t.Errorf("Config{Hz: %d}.period() = %v, want %v", tt.hz, got, tt.want)
		}
	}
}
