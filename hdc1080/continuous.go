// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// continuous runs the SenseContinuous loop shared by Dev and Engine.
type continuous struct {
	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func (c *continuous) start(interval time.Duration, sense func(*physic.Env) error) (<-chan physic.Env, error) {
	if interval < ConversionTime {
		return nil, errors.New("hdc1080: sample interval is < conversion time")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil, errors.New("hdc1080: SenseContinuous already running")
	}
	c.stop = make(chan struct{})
	ch := make(chan physic.Env, 16)
	c.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer c.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := sense(&e); err != nil {
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}(c.stop)
	return ch, nil
}

// halt stops a running loop and waits for it to exit.
func (c *continuous) halt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.wg.Wait()
	c.stop = nil
}
