package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/connor-lennox/rgbl/internal/machine"
)

var failRe = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)

// serialCapture implements machine.SerialSink, buffering every byte the
// cartridge writes over the serial port so it can be scanned for a
// blargg-style "Passed"/"Failed N tests" banner.
type serialCapture struct {
	buf bytes.Buffer
}

func (s *serialCapture) SerialOut(b byte) { s.buf.WriteByte(b) }

// RunTestROM steps m frame by frame, watching serial output for a pass/fail
// banner, until one appears, maxFrames is reached, or timeout elapses.
// Returns passed=true only on an explicit "Passed" banner.
func RunTestROM(m *machine.Machine, maxFrames int, timeout time.Duration) (passed bool, serial string, err error) {
	sc := &serialCapture{}
	m.SetSerialSink(sc)

	deadline := time.Now().Add(timeout)
	for i := 0; i < maxFrames; i++ {
		if e := m.StepFrame(); e != nil {
			return false, sc.buf.String(), e
		}
		s := sc.buf.String()
		if strings.Contains(strings.ToLower(s), "passed") {
			return true, s, nil
		}
		if failRe.MatchString(s) {
			return false, s, nil
		}
		if timeout > 0 && time.Now().After(deadline) {
			return false, s, fmt.Errorf("timed out after %s waiting for a pass/fail banner", timeout)
		}
	}
	return false, sc.buf.String(), fmt.Errorf("no pass/fail banner after %d frames", maxFrames)
}
