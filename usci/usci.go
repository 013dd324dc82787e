// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package usci drives a two-wire (I²C) bus controller one register access at
// a time: start and stop conditions, single byte transfers and polling of the
// controller's ready flags.
//
// The register layout is the one of the TI USCI_B module found on MSP430
// parts. Port works over any Registers implementation; Map backs it with the
// physical memory of the controller through pmem.
package usci

import (
	"errors"
	"fmt"

	"periph.io/x/host/v3/pmem"
)

// Controller is the capability a polled device driver needs from a two-wire
// bus controller.
//
// None of the methods block. Callers poll TxReady, RxReady and StopPending to
// pace a transfer.
type Controller interface {
	// SetTarget selects the 7 bit address used by the next start condition.
	SetTarget(addr uint16)
	// StartWrite switches to transmit mode and generates a start condition.
	StartWrite()
	// StartRead switches to receive mode and generates a (repeated) start
	// condition.
	StartRead()
	// Transmit loads the next byte to send.
	Transmit(b byte)
	// Receive returns the last byte received.
	Receive() byte
	// Stop requests a stop condition after the current byte.
	Stop()
	// TxReady reports whether the transmit buffer can accept a byte.
	TxReady() bool
	// RxReady reports whether a received byte is available.
	RxReady() bool
	// StopPending reports whether a requested stop condition has not been
	// generated yet.
	StopPending() bool
}

// Registers is 8 and 16 bit access to a controller's register file.
type Registers interface {
	Read8(off uint16) uint8
	Write8(off uint16, v uint8)
	Write16(off uint16, v uint16)
}

// USCI_B register offsets.
const (
	OffCTL1   uint16 = 0x00
	OffCTL0   uint16 = 0x01
	OffBRW    uint16 = 0x06
	OffSTAT   uint16 = 0x0a
	OffRXBUF  uint16 = 0x0c
	OffTXBUF  uint16 = 0x0e
	OffI2COA  uint16 = 0x10
	OffI2CSA  uint16 = 0x12
	OffIE     uint16 = 0x1c
	OffIFG    uint16 = 0x1d
	OffIV     uint16 = 0x1e
	regsSize         = 0x20
)

// CTL1 bits.
const (
	UCTXSTT uint8 = 1 << 1
	UCTXSTP uint8 = 1 << 2
	UCTR    uint8 = 1 << 4
)

// IFG bits.
const (
	UCRXIFG   uint8 = 1 << 0
	UCTXIFG   uint8 = 1 << 1
	UCNACKIFG uint8 = 1 << 5
)

// Mem is a register file laid out in memory, little endian.
type Mem []byte

// Read8 implements Registers.
func (m Mem) Read8(off uint16) uint8 {
	return m[off]
}

// Write8 implements Registers.
func (m Mem) Write8(off uint16, v uint8) {
	m[off] = v
}

// Write16 implements Registers.
func (m Mem) Write16(off uint16, v uint16) {
	m[off] = byte(v)
	m[off+1] = byte(v >> 8)
}

// Port is a Controller over a USCI_B register file.
type Port struct {
	regs Registers
	view *pmem.View
	name string
}

// New returns a Port over regs.
func New(regs Registers) *Port {
	return &Port{regs: regs, name: "usci"}
}

// Map maps the USCI_B register file at physical address base.
//
// It requires access to /dev/mem. Call Close to unmap it.
func Map(base uint64) (*Port, error) {
	v, err := pmem.Map(base, regsSize)
	if err != nil {
		return nil, fmt.Errorf("usci: map 0x%x: %w", base, err)
	}
	return &Port{regs: Mem(v.Slice), view: v, name: fmt.Sprintf("usci@0x%x", base)}, nil
}

// Close unmaps the register file if Map created it.
func (p *Port) Close() error {
	if p.view == nil {
		return nil
	}
	err := p.view.Close()
	p.view = nil
	return err
}

func (p *Port) String() string {
	return p.name
}

func (p *Port) set8(off uint16, bits uint8) {
	p.regs.Write8(off, p.regs.Read8(off)|bits)
}

func (p *Port) clear8(off uint16, bits uint8) {
	p.regs.Write8(off, p.regs.Read8(off)&^bits)
}

// SetTarget implements Controller.
func (p *Port) SetTarget(addr uint16) {
	p.regs.Write16(OffI2CSA, addr)
}

// StartWrite implements Controller.
func (p *Port) StartWrite() {
	p.set8(OffCTL1, UCTR|UCTXSTT)
}

// StartRead implements Controller.
func (p *Port) StartRead() {
	p.clear8(OffCTL1, UCTR)
	p.set8(OffCTL1, UCTXSTT)
}

// Transmit implements Controller.
func (p *Port) Transmit(b byte) {
	p.regs.Write8(OffTXBUF, b)
}

// Receive implements Controller.
func (p *Port) Receive() byte {
	return p.regs.Read8(OffRXBUF)
}

// Stop implements Controller.
func (p *Port) Stop() {
	p.set8(OffCTL1, UCTXSTP)
}

// TxReady implements Controller.
func (p *Port) TxReady() bool {
	return p.regs.Read8(OffIFG)&UCTXIFG != 0
}

// RxReady implements Controller.
func (p *Port) RxReady() bool {
	return p.regs.Read8(OffIFG)&UCRXIFG != 0
}

// StopPending implements Controller.
func (p *Port) StopPending() bool {
	return p.regs.Read8(OffCTL1)&UCTXSTP != 0
}

// ErrTimeout is matched by every *TimeoutError.
var ErrTimeout = errors.New("usci: bus timeout")

// TimeoutError is returned when a polled wait ran out of budget. A missing
// device shows up the same way since its flags never set.
type TimeoutError struct {
	// Step names the wait that gave up.
	Step string
}

func (e *TimeoutError) Error() string {
	return "usci: bus timeout waiting for " + e.Step
}

// Is makes errors.Is(err, ErrTimeout) true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

var _ Controller = &Port{}
var _ Registers = Mem(nil)
