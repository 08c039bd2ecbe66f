package helper

import "sync"

// Invoker is responsible for handling goroutines.
// Every goroutine spawned by a replica goes through its invoker,
// so closing the replica can wait for all of them to finish.
type Invoker interface {
	// Spawn a new goroutine and manage through the SyncGroup.
	Spawn(func())

	// Stop blocks until every spawned goroutine returns. After
	// this, spawning a new goroutine panics.
	Stop()
}

type groupInvoker struct {
	mutex   *sync.Mutex
	working bool
	group   *sync.WaitGroup
}

// NewInvoker creates an invoker bounded to a single replica.
func NewInvoker() Invoker {
	return &groupInvoker{
		mutex:   &sync.Mutex{},
		working: true,
		group:   &sync.WaitGroup{},
	}
}

func (c *groupInvoker) Spawn(f func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.working {
		panic("invoker already closed!")
	}

	c.group.Add(1)
	go func() {
		defer c.group.Done()
		f()
	}()
}

func (c *groupInvoker) Stop() {
	c.mutex.Lock()
	c.working = false
	c.mutex.Unlock()
	c.group.Wait()
}
