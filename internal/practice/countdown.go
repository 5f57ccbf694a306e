package practice

import (
	"sync"
	"time"
)

// Countdown 单个可取消的倒计时。同一时刻最多一个计时器处于活动状态，
// 重新 Start 会取消上一个
type Countdown struct {
	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	active bool
}

func NewCountdown() *Countdown {
	return &Countdown{}
}

// Start 在 limit 之后调用一次 onExpire。limit <= 0 时不计时
func (c *Countdown) Start(limit time.Duration, onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if limit <= 0 {
		return
	}

	c.gen++
	gen := c.gen
	c.active = true
	c.timer = time.AfterFunc(limit, func() {
		c.mu.Lock()
		// 期间被 Stop 或重新 Start 过
		if !c.active || c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.active = false
		c.timer = nil
		c.mu.Unlock()

		onExpire()
	})
}

// Stop 取消当前计时器，返回是否确实阻止了一次到期回调
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Countdown) stopLocked() bool {
	if !c.active {
		return false
	}
	c.active = false
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return true
}

// Active 是否有计时器在运行
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
