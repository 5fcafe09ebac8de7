package promptlist

import (
	"sync"
	"time"
)

// Debouncer откладывает вызов функции до истечения задержки без новых Trigger.
// Поколение (gen) отсекает срабатывания таймеров, которые уже были перезапущены.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger (пере)запускает таймер. fn вызывается без удержания внутренних блокировок
// и получает поколение своего запуска: между проверкой и вызовом fn может успеть
// прийти новый Trigger, поэтому fn сверяет поколение через Current под своей блокировкой.
func (d *Debouncer) Trigger(fn func(gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn(gen)
	})
}

// Current reports whether gen belongs to the latest Trigger and was not stopped since.
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == gen
}

// Stop отменяет ожидающий вызов, если он есть.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
