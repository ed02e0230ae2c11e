package vm

import "sync"

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Keypad holds the state of the 16 hexadecimal keys. The host writes it,
// possibly from another goroutine; the VM only reads it.
type Keypad struct {
	mu   sync.Mutex
	keys [KeyCount]bool
}

// Press marks key as held down. Keys outside 0x0-0xF are ignored.
func (k *Keypad) Press(key Key) {
	k.set(key, true)
}

// Release marks key as up. Keys outside 0x0-0xF are ignored.
func (k *Keypad) Release(key Key) {
	k.set(key, false)
}

// IsKeyDown reports whether key is held. Keys outside 0x0-0xF are never down.
func (k *Keypad) IsKeyDown(key Key) bool {
	if int(key) >= KeyCount {
		return false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[key]
}

func (k *Keypad) set(key Key, down bool) {
	if int(key) >= KeyCount {
		return
	}

	k.mu.Lock()
	k.keys[key] = down
	k.mu.Unlock()
}

// lowestDown returns the lowest-numbered key currently held.
func (k *Keypad) lowestDown() (Key, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, down := range k.keys {
		if down {
			return Key(i), true
		}
	}

	return 0, false
}

func (k *Keypad) reset() {
	k.mu.Lock()
	k.keys = [KeyCount]bool{}
	k.mu.Unlock()
}
