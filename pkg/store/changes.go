package store

import (
	"encoding/json"
	"sync"
)

// Change is the old and new encoded value of a key. New is nil for removed keys,
// Old is nil for keys that didn't exist before.
type Change struct {
	Old json.RawMessage
	New json.RawMessage
}

// Changes maps changed keys to their change
type Changes map[string]Change

// Has reports whether any of the keys changed
func (c Changes) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := c[k]; ok {
			return true
		}
	}
	return false
}

// Keys returns changed keys
func (c Changes) Keys() []string {
	res := make([]string, 0, len(c))
	for k := range c {
		res = append(res, k)
	}
	return res
}

// dispatcher delivers change sets to subscribers in commit order without
// blocking the store owner. The queue is unbounded.
type dispatcher struct {
	mu     sync.Mutex
	queue  []Changes
	subs   map[int]func(Changes)
	nextID int
	signal chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		subs:   map[int]func(Changes){},
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) subscribe(fn func(Changes)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *dispatcher) push(c Changes) {
	d.mu.Lock()
	d.queue = append(d.queue, c)
	d.mu.Unlock()
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-d.signal:
		}
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			c := d.queue[0]
			d.queue = d.queue[1:]
			subs := make([]func(Changes), 0, len(d.subs))
			for _, fn := range d.subs {
				subs = append(subs, fn)
			}
			d.mu.Unlock()

			for _, fn := range subs {
				fn(c)
			}
		}
	}
}

func (d *dispatcher) close() {
	close(d.done)
	d.wg.Wait()
}
