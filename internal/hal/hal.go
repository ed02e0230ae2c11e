// Package hal holds what the host backends share: the control errors they
// return to the run loop, the keyboard layout and cycle pacing. It also
// provides the raw-terminal backend.
package hal

import (
	"errors"
	"time"
	"unicode"

	"github.com/kapitanov/chip8vm/internal/vm"
)

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// DefaultHz is the cycle rate used when Config.Hz is not set.
const DefaultHz = 700

type Config struct {
	// Hz is the number of VM cycles per second.
	Hz int
}

func (c Config) period() time.Duration {
	hz := c.Hz
	if hz <= 0 {
		hz = DefaultHz
	}
	return time.Second / time.Duration(hz)
}

// Physical                Logical
// ================        =================
// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
// | q | w | e | r |       | 4 | 5 | 6 | D |
// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
// | z | x | c | v |       | A | 0 | B | F |
// ================        =================
var keyLayout = map[rune]vm.Key{
	'1': vm.Key1, '2': vm.Key2, '3': vm.Key3, '4': vm.KeyC,
	'q': vm.Key4, 'w': vm.Key5, 'e': vm.Key6, 'r': vm.KeyD,
	'a': vm.Key7, 's': vm.Key8, 'd': vm.Key9, 'f': vm.KeyE,
	'z': vm.KeyA, 'x': vm.Key0, 'c': vm.KeyB, 'v': vm.KeyF,
}

// KeyForRune maps a character of the host keyboard to a CHIP-8 key.
func KeyForRune(r rune) (vm.Key, bool) {
	key, ok := keyLayout[unicode.ToLower(r)]
	return key, ok
}

// Pacer spaces calls to Wait one period apart. When the caller falls more
// than maxLag behind, it resynchronises instead of running a burst of
// catch-up cycles.
type Pacer struct {
	period time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

const maxLag = 100 * time.Millisecond

func NewPacer(cfg Config) *Pacer {
	return &Pacer{
		period: cfg.period(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (p *Pacer) Wait() {
	now := p.now()
	if p.next.IsZero() || now.Sub(p.next) > maxLag {
		p.next = now
	}

	p.next = p.next.Add(p.period)
	if d := p.next.Sub(now); d > 0 {
		p.sleep(d)
	}
}
