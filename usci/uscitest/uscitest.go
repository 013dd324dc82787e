// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uscitest is meant to be used to test drivers over a fake
// usci.Controller.
//
// Fake records every operation and lets a test decide how long each flag
// takes to assert, or that it never asserts again.
package uscitest

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/hdc1080/usci"
)

// Cond is a condition a driver polls for.
type Cond int

const (
	// TxReady is usci.Controller.TxReady returning true.
	TxReady Cond = iota
	// RxReady is usci.Controller.RxReady returning true.
	RxReady
	// StopDone is usci.Controller.StopPending returning false.
	StopDone
	numConds
)

func (c Cond) String() string {
	switch c {
	case TxReady:
		return "TxReady"
	case RxReady:
		return "RxReady"
	case StopDone:
		return "StopDone"
	default:
		return fmt.Sprintf("Cond(%d)", int(c))
	}
}

// Kind is the kind of a recorded operation.
type Kind int

const (
	OpTarget Kind = iota
	OpStartWrite
	OpStartRead
	OpTransmit
	OpReceive
	OpStop
)

// Op is one recorded controller operation.
type Op struct {
	Kind Kind
	// Addr is set for OpTarget.
	Addr uint16
	// B is the byte sent for OpTransmit or returned for OpReceive.
	B byte
}

func (o Op) String() string {
	switch o.Kind {
	case OpTarget:
		return fmt.Sprintf("target 0x%02x", o.Addr)
	case OpStartWrite:
		return "start W"
	case OpStartRead:
		return "start R"
	case OpTransmit:
		return fmt.Sprintf("tx 0x%02x", o.B)
	case OpReceive:
		return fmt.Sprintf("rx 0x%02x", o.B)
	case OpStop:
		return "stop"
	default:
		return fmt.Sprintf("Op(%d)", int(o.Kind))
	}
}

// Fake implements usci.Controller.
//
// The zero value is usable: every flag asserts on the first poll and Receive
// returns 0xff.
type Fake struct {
	// R is returned by Receive one byte at a time. It is replayed from the
	// start once exhausted.
	R []byte
	// Latency is the number of polls a condition reads false at the start of
	// every wait before it reads true.
	Latency map[Cond]int
	// StuckAfter makes a condition never read true again once it has been
	// satisfied that many times. 0 means it never asserts. Conditions not in
	// the map never get stuck.
	StuckAfter map[Cond]int

	mu      sync.Mutex
	ops     []Op
	polls   [numConds]int
	hits    [numConds]int
	left    [numConds]int
	waiting [numConds]bool
	next    int
}

// Ops returns a copy of the recorded operations.
func (f *Fake) Ops() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Op(nil), f.ops...)
}

// Written returns the bytes passed to Transmit, in order.
func (f *Fake) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var w []byte
	for _, o := range f.ops {
		if o.Kind == OpTransmit {
			w = append(w, o.B)
		}
	}
	return w
}

// Polls returns how many times c was polled.
func (f *Fake) Polls(c Cond) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[c]
}

// Reset forgets the recorded operations and poll counters. R, Latency and
// StuckAfter are kept.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
	f.polls = [numConds]int{}
	f.hits = [numConds]int{}
	f.left = [numConds]int{}
	f.waiting = [numConds]bool{}
	f.next = 0
}

func (f *Fake) String() string {
	return "uscitest.Fake"
}

// SetTarget implements usci.Controller.
func (f *Fake) SetTarget(addr uint16) {
	f.record(Op{Kind: OpTarget, Addr: addr})
}

// StartWrite implements usci.Controller.
func (f *Fake) StartWrite() {
	f.record(Op{Kind: OpStartWrite})
}

// StartRead implements usci.Controller.
func (f *Fake) StartRead() {
	f.record(Op{Kind: OpStartRead})
}

// Transmit implements usci.Controller.
func (f *Fake) Transmit(b byte) {
	f.record(Op{Kind: OpTransmit, B: b})
}

// Receive implements usci.Controller.
func (f *Fake) Receive() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := byte(0xff)
	if len(f.R) != 0 {
		b = f.R[f.next%len(f.R)]
		f.next++
	}
	f.ops = append(f.ops, Op{Kind: OpReceive, B: b})
	return b
}

// Stop implements usci.Controller.
func (f *Fake) Stop() {
	f.record(Op{Kind: OpStop})
}

// TxReady implements usci.Controller.
func (f *Fake) TxReady() bool {
	return f.poll(TxReady)
}

// RxReady implements usci.Controller.
func (f *Fake) RxReady() bool {
	return f.poll(RxReady)
}

// StopPending implements usci.Controller.
func (f *Fake) StopPending() bool {
	return !f.poll(StopDone)
}

func (f *Fake) record(o Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, o)
}

func (f *Fake) poll(c Cond) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[c]++
	if n, ok := f.StuckAfter[c]; ok && f.hits[c] >= n {
		return false
	}
	if !f.waiting[c] {
		f.waiting[c] = true
		f.left[c] = f.Latency[c]
	}
	if f.left[c] > 0 {
		f.left[c]--
		return false
	}
	f.waiting[c] = false
	f.hits[c]++
	return true
}

var _ usci.Controller = &Fake{}
