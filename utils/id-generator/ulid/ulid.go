package ulid

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

/* ========================================================================
 * ULID - 事件 ID
 * ========================================================================
 * 26 字符 Crockford Base32，同一毫秒内单调递增，消费端可按 ID 排序去重
 * ======================================================================== */

// Source 并发安全的单调 ULID 源
type Source struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSource entropy 为 nil 时使用 crypto/rand
func NewSource(entropy io.Reader) *Source {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Source{entropy: ulid.Monotonic(entropy, 0)}
}

// At 以指定时间生成
func (s *Source) At(t time.Time) ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy)
}

var defaultSource = sync.OnceValue(func() *Source { return NewSource(nil) })

// GenerateString 使用进程级默认源
func GenerateString() string {
	return defaultSource().At(time.Now()).String()
}

// Time 解析 ULID 字符串中的时间戳
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
