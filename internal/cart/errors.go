package cart

import "errors"

// ErrUnsupportedCartType is returned when header byte 0x0147 is outside the
// set this emulator can construct a controller for. Fatal at load time.
var ErrUnsupportedCartType = errors.New("unsupported cartridge type")
