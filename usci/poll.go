// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usci

// Budget is the number of times a single wait polls a flag before giving up.
// It counts polls, not time, so the worst case latency scales with the CPU.
type Budget uint32

// DefaultBudget is used when a Poller's Budget is 0.
const DefaultBudget Budget = 5000

// Poller bounds busy-wait loops on controller flags.
type Poller struct {
	Budget Budget
	// Tick is called after every poll that found the flag not ready. nil
	// spins.
	Tick func()
}

// Wait polls ready until it returns true or the budget is spent. Each call
// starts its own countdown.
func (p *Poller) Wait(ready func() bool) bool {
	n := p.Budget
	if n == 0 {
		n = DefaultBudget
	}
	for ; n > 0; n-- {
		if ready() {
			return true
		}
		if p.Tick != nil {
			p.Tick()
		}
	}
	return false
}

// Until is Wait returning a *TimeoutError naming step on exhaustion.
func (p *Poller) Until(step string, ready func() bool) error {
	if p.Wait(ready) {
		return nil
	}
	return &TimeoutError{Step: step}
}

// WriteRegister writes data to register reg of the device at addr in a single
// transaction:
//
//	[addr|W] [reg] [data...] [STOP]
//
// It returns once the stop condition went out on the bus.
func WriteRegister(c Controller, p *Poller, addr uint16, reg byte, data []byte) error {
	c.SetTarget(addr)
	c.StartWrite()
	if err := p.Until("address", c.TxReady); err != nil {
		return err
	}
	c.Transmit(reg)
	if err := p.Until("register", c.TxReady); err != nil {
		return err
	}
	for _, b := range data {
		c.Transmit(b)
		if err := p.Until("data", c.TxReady); err != nil {
			return err
		}
	}
	c.Stop()
	return p.Until("stop", func() bool { return !c.StopPending() })
}
