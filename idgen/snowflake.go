// Package idgen generates the 63-bit snowflake-style identifiers used to
// build trace and span ids (§5, GLOSSARY: "Snowflake ID"). A snowflake id
// packs [timestamp | group | machine | sequence] into a single uint64; the
// process-wide default Generator is shared and mutex-protected, matching
// the "read-many, atomic-on-two-fields" shared-state contract in §5.
package idgen

import (
	"errors"
	"sync"
	"time"
)

const (
	timestampBits = 41
	groupBits     = 5
	machineBits   = 5
	sequenceBits  = 12

	maxSequence = int64(1)<<sequenceBits - 1
	maxGroup    = int64(1)<<groupBits - 1
	maxMachine  = int64(1)<<machineBits - 1

	machineShift   = sequenceBits
	groupShift     = sequenceBits + machineBits
	timestampShift = sequenceBits + machineBits + groupBits
)

// ErrClockMovedBackward is returned by Next when the wall clock observes a
// timestamp earlier than the last one generated. Per §9's design notes, the
// source fails fast rather than blocking; this generator preserves that
// contract — it never blocks waiting for the clock to catch up.
var ErrClockMovedBackward = errors.New("idgen: clock moved backward")

// ErrSequenceExhausted is returned by Next once 4096 ids (sequence 0 to
// 4095) have already been generated within the current millisecond.
var ErrSequenceExhausted = errors.New("idgen: sequence exhausted for this millisecond")

// Generator produces 63-bit snowflake ids. The zero value is not usable;
// use New.
type Generator struct {
	mu            sync.Mutex
	epoch         int64
	group         int64
	machine       int64
	lastTimestamp int64
	sequence      int64

	now func() int64
}

// New creates a Generator tagged with the given group and machine ids (each
// must fit in 5 bits; out-of-range values are masked).
func New(group, machine int64, epoch time.Time) *Generator {
	return &Generator{
		epoch:   epoch.UnixMilli(),
		group:   group & maxGroup,
		machine: machine & maxMachine,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// SetClockForTest overrides the generator's clock source. It exists only to
// let tests exercise the clock-rollback failure path deterministically.
func (g *Generator) SetClockForTest(now func() int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Next returns a new id, or an error if the clock moved backward or the
// per-millisecond sequence quota (4096 ids) is exhausted.
func (g *Generator) Next() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now() - g.epoch
	if ts < g.lastTimestamp {
		return 0, ErrClockMovedBackward
	}

	if ts == g.lastTimestamp {
		g.sequence++
		if g.sequence > maxSequence {
			return 0, ErrSequenceExhausted
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = ts

	id := uint64(ts)<<timestampShift |
		uint64(g.group)<<groupShift |
		uint64(g.machine)<<machineShift |
		uint64(g.sequence)
	return id, nil
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Default returns the process-wide generator, lazily constructed on first
// use with group/machine 0 and an epoch of 2020-01-01 UTC.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = New(0, 0, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	})
	return defaultGen
}

// NewTraceID returns a 16-byte trace id built from two consecutive
// snowflake ids, matching SRPC's 128-bit trace id (§3, §4.4).
func NewTraceID() ([16]byte, error) {
	var out [16]byte
	hi, err := Default().Next()
	if err != nil {
		return out, err
	}
	lo, err := Default().Next()
	if err != nil {
		return out, err
	}
	putUint64(out[0:8], hi)
	putUint64(out[8:16], lo)
	return out, nil
}

// NewSpanID returns an 8-byte span id built from a single snowflake id
// (§3: SRPC_SPANID_SIZE == 8).
func NewSpanID() ([8]byte, error) {
	var out [8]byte
	v, err := Default().Next()
	if err != nil {
		return out, err
	}
	putUint64(out[:], v)
	return out, nil
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
