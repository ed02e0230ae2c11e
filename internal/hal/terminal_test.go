package hal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kapitanov/chip8vm/internal/vm"
)

type keyLog struct {
	down []vm.Key
	up   []vm.Key
}

func (l *keyLog) keyDown(k vm.Key) { l.down = append(l.down, k) }
func (l *keyLog) keyUp(k vm.Key)   { l.up = append(l.up, k) }

func TestKeyState_Feed(t *testing.T) {
	var (
		s   keyState
		log keyLog
		t0  = time.Unix(1000, 0)
	)

	if err := s.feed([]byte("q1!q"), t0, log.keyDown); err != nil {
		t.Fatalf("feed() error = %v", err)
	}

	// q repeats within one read; it goes down once.
	if diff := cmp.Diff([]vm.Key{vm.Key4, vm.Key1}, log.down); diff != "" {
		t.Errorf("keys down: (-want, +got)\n%s", diff)
	}

	s.expire(t0.Add(keyHold/2), log.keyUp)
	if len(log.up) != 0 {
		t.Errorf("keys released early: %v", log.up)
	}

	// auto-repeat of 1 extends its hold
	if err := s.feed([]byte("1"), t0.Add(keyHold/2), log.keyDown); err != nil {
		t.Fatal(err)
	}

	s.expire(t0.Add(keyHold), log.keyUp)
	if diff := cmp.Diff([]vm.Key{vm.Key4}, log.up); diff != "" {
		t.Errorf("keys up: (-want, +got)\n%s", diff)
	}

	s.expire(t0.Add(2*keyHold), log.keyUp)
	if diff := cmp.Diff([]vm.Key{vm.Key4, vm.Key1}, log.up); diff != "" {
		t.Errorf("keys up: (-want, +got)\n%s", diff)
	}

	if len(log.down) != 2 {
		t.Errorf("held key pressed again: %v", log.down)
	}
}

func TestKeyState_ControlKeys(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{name: "ctrl-c", input: []byte{'a', ctrlC}, want: ErrQuit},
		{name: "backspace", input: []byte{backspace}, want: ErrReboot},
		{name: "delete", input: []byte{del, ctrlC}, want: ErrReboot},
		{name: "escape", input: []byte{0x1b}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s keyState
			err := s.feed(tt.input, time.Unix(1000, 0), func(vm.Key) {})
			if !errors.Is(err, tt.want) {
				t.Errorf("feed() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderFrame(t *testing.T) {
	machine := vm.New()
	program := []byte{
		0xA2, 0x06, // mvi 0x206
		0xD0, 0x11, // sprite v0, v1, 1
		0x12, 0x04, // jmp 0x204
		0x80, 0x00,
	}
	if err := machine.Load(program); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := machine.Step(); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	renderFrame(&buf, machine.Display())

	out := buf.String()
	if !strings.HasPrefix(out, "\x1b[H") {
		t.Fatalf("frame does not start at home: %q", out[:8])
	}

	lines := strings.Split(strings.TrimPrefix(out, "\x1b[H"), "\r\n")
	if len(lines) != vm.ScreenHeight/2+1 || lines[len(lines)-1] != "" {
		t.Fatalf("frame has %d lines, want %d", len(lines)-1, vm.ScreenHeight/2)
	}

	wantFirst := "▀" + strings.Repeat(" ", vm.ScreenWidth-1)
	if lines[0] != wantFirst {
		t.Errorf("first line = %q, want %q", lines[0], wantFirst)
	}

	blank := strings.Repeat(" ", vm.ScreenWidth)
	for i, line := range lines[1 : len(lines)-1] {
		if line != blank {
			t.Errorf("line %d = %q, want blank", i+1, line)
		}
	}
}
