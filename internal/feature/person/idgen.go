package person

import (
	"strconv"
	"sync"
	"time"
)

// IDGen 生成创建时间戳（毫秒）形式的 ID。
// 同一毫秒内多次调用时顺延 +1，保证严格递增不重复。
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGen() *IDGen { return &IDGen{now: time.Now} }

// Observe 用已有 ID 推高下界（加载快照后调用，防止时钟回拨撞号）
func (g *IDGen) Observe(id string) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	if n > g.last {
		g.last = n
	}
	g.mu.Unlock()
}

func (g *IDGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
