package cpu

import "errors"

// ErrUnsupportedOpcode is returned by Step when the fetched opcode has no
// decoding, fatal per the error-handling design (no silent NOP fallback).
var ErrUnsupportedOpcode = errors.New("unsupported opcode")
