package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	// TransactionPrefix marks ledger transaction ids, e.g. "TXNMB1X2K9Q00A7F3KD9Z".
	TransactionPrefix = "TXN"
	// TransferPrefix marks transfer ids.
	TransferPrefix = "TRF"

	counterWidth = 4
	suffixLength = 6
	counterSpace = 36 * 36 * 36 * 36
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces ids of the form <prefix><time><counter><random>.
// The counter makes ids unique within one process even inside the same
// millisecond; the random suffix separates processes.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	counter  int64
	now      func() time.Time
	randomFn func() ([]byte, error)
}

// NewGenerator creates a Generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{
		now:      time.Now,
		randomFn: randomBytes,
	}
}

func randomBytes() ([]byte, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return u.Bytes(), nil
}

// Next returns a new id with the given prefix.
func (g *Generator) Next(prefix string) (string, error) {
	ms, seq := g.tick()

	raw, err := g.randomFn()
	if err != nil {
		return "", fmt.Errorf("generating id suffix: %w", err)
	}
	if len(raw) < suffixLength {
		return "", fmt.Errorf("generating id suffix: short random read (%d bytes)", len(raw))
	}

	var b strings.Builder
	b.Grow(len(prefix) + 9 + counterWidth + suffixLength)
	b.WriteString(prefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(ms, 36)))
	counter := strings.ToUpper(strconv.FormatInt(seq, 36))
	b.WriteString(strings.Repeat("0", counterWidth-len(counter)))
	b.WriteString(counter)
	for i := 0; i < suffixLength; i++ {
		b.WriteByte(alphabet[int(raw[i])%len(alphabet)])
	}
	return b.String(), nil
}

// tick returns the millisecond component and a sequence that never repeats
// for the same millisecond. When the counter wraps, the millisecond is
// advanced artificially so ids stay unique.
func (g *Generator) tick() (int64, int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.lastMs {
		ms = g.lastMs
		g.counter++
		if g.counter >= counterSpace {
			ms++
			g.counter = 0
		}
	} else {
		g.counter = 0
	}
	g.lastMs = ms
	return ms, g.counter
}

// Digits returns a random numeric string of length n, used for account and
// card numbers. The first digit is never zero.
func (g *Generator) Digits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid digit count %d", n)
	}
	var b strings.Builder
	b.Grow(n)
	for b.Len() < n {
		raw, err := g.randomFn()
		if err != nil {
			return "", fmt.Errorf("generating digits: %w", err)
		}
		for _, c := range raw {
			if b.Len() == n {
				break
			}
			d := int(c) % 10
			if b.Len() == 0 && d == 0 {
				d = 1 + int(c)%9
			}
			b.WriteByte(byte('0' + d))
		}
	}
	return b.String(), nil
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return len(id) > len(prefix) && strings.HasPrefix(id, prefix)
}
