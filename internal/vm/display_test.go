package vm

import "testing"

func TestDisplay_PixelAtWraps(t *testing.T) {
	var d Display
	d.flip(0, 0)
	d.flip(63, 31)

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{64, 32, true},
		{-64, -32, true},
		{63, 31, true},
		{-1, -1, true},
		{127, 63, true},
		{1, 0, false},
		{0, 1, false},
	}

	for _, tt := range tests {
		if got := d.PixelAt(tt.x, tt.y); got != tt.want {
			t.Errorf("PixelAt(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDisplay_FlipReportsErase(t *testing.T) {
	var d Display

	if d.flip(5, 5) {
		t.Error("flip of an unlit pixel reported an erase")
	}

	if !d.flip(5, 5) {
		t.Error("flip of a lit pixel did not report an erase")
	}

	if d.PixelAt(5, 5) {
		t.Error("pixel lit after two flips")
	}
}

func TestDisplay_Size(t *testing.T) {
	var d Display
	if d.Width() != 64 || d.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", d.Width(), d.Height())
	}
}

func TestKeypad(t *testing.T) {
	var k Keypad

	k.Press(Key3)
	k.Press(Key(0x10))

	if !k.IsKeyDown(Key3) {
		t.Error("Key3 not down after Press")
	}

	if k.IsKeyDown(Key(0x10)) {
		t.Error("out-of-range key reads as down")
	}

	if key, ok := k.lowestDown(); !ok || key != Key3 {
		t.Errorf("lowestDown() = %v, %v, want Key3, true", key, ok)
	}

	k.Release(Key3)
	if k.IsKeyDown(Key3) {
		t.Error("Key3 down after Release")
	}

	if _, ok := k.lowestDown(); ok {
		t.Error("lowestDown() found a key on an idle keypad")
	}
}

func TestKeypad_ConcurrentWrites(t *testing.T) {
	var k Keypad
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			k.Press(Key(i % KeyCount))
			k.Release(Key(i % KeyCount))
		}
	}()

	for i := 0; i < 1000; i++ {
		k.IsKeyDown(Key(i % KeyCount))
	}
	<-done
}
