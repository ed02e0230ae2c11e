package window

import (
	"testing"

	"github.com/kapitanov/chip8vm/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeyMap(t *testing.T) {
	tests := []struct {
		code sdl.Scancode
		want vm.Key
		ok   bool
	}{
		{sdl.SCANCODE_1, vm.Key1, true},
		{sdl.SCANCODE_4, vm.KeyC, true},
		{sdl.SCANCODE_Q, vm.Key4, true},
		{sdl.SCANCODE_R, vm.KeyD, true},
		{sdl.SCANCODE_A, vm.Key7, true},
		{sdl.SCANCODE_F, vm.KeyE, true},
		{sdl.SCANCODE_Z, vm.KeyA, true},
		{sdl.SCANCODE_X, vm.Key0, true},
		{sdl.SCANCODE_V, vm.KeyF, true},
		{sdl.SCANCODE_5, 0, false},
		{sdl.SCANCODE_ESCAPE, 0, false},
		{sdl.SCANCODE_BACKSPACE, 0, false},
	}

	for _, tt := range tests {
		got, ok := keyMap(tt.code)
		if got != tt.want || ok != tt.ok {
			t.Errorf("keyMap(%d) = %v, %v, want %v, %v", tt.code, got, ok, tt.want, tt.ok)
		}
	}
}

func TestScancodeLayout_CoversKeypad(t *testing.T) {
	var seen [vm.KeyCount]int
	for _, key := range scancodeLayout {
		seen[key]++
	}

	for key, n := range seen {
		if n != 1 {
			t.Errorf("key %X is mapped %d times, want 1", key, n)
		}
	}
}
