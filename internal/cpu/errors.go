package cpu

import "fmt"

// OperandError reports a decoded bitfield outside its selector range.
type OperandError struct {
	Field string
	Value uint8
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("%s operand index %d out of range", e.Field, e.Value)
}

// IllegalOpcodeError reports one of the opcodes the SM83 leaves undefined.
// Hardware locks up on these.
type IllegalOpcodeError struct {
	Opcode byte
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode %02X", e.Opcode)
}

// Error is returned by Step and Interrupt. Registers and memory are left at
// the instruction boundary PC identifies.
type Error struct {
	PC     uint16
	Opcode byte
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cpu: instruction %02X at %04X: %v", e.Opcode, e.PC, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the device or operand error.
func (e *Error) Cause() error { return e.Err }
