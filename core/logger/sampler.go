package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets num out of every den debug lines through.
// den == 0 passes everything; num == 0 with den > 0 drops everything.
type ratioSampler struct {
	ratio atomic.Uint64 // num<<32 | den
	seen  atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(num, den int) {
	if den <= 0 || num < 0 {
		num, den = 0, 0
	}
	if num > den {
		num = den
	}
	s.ratio.Store(uint64(uint32(num))<<32 | uint64(uint32(den)))
	s.seen.Store(0)
}

func (s *ratioSampler) get() (num, den uint64) {
	r := s.ratio.Load()
	return r >> 32, r & 0xffffffff
}

// Allow reports whether the next line passes.
func (s *ratioSampler) Allow() bool {
	num, den := s.get()
	switch {
	case den == 0 || num == den:
		return true
	case num == 0:
		return false
	}
	n := s.seen.Add(1) - 1
	return n%den < num
}

// parseRatioSpec understands "all", "off", "N/M", "N%" and a bare "M" meaning 1/M.
// ok is false when spec is empty or malformed.
func parseRatioSpec(spec string) (num, den int, ok bool) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "":
		return 0, 0, false
	case "all", "on", "1/1":
		return 1, 1, true
	case "off", "none", "0":
		return 0, 1, true
	}
	if pct, found := strings.CutSuffix(spec, "%"); found {
		v, err := strconv.Atoi(strings.TrimSpace(pct))
		if err != nil || v < 0 || v > 100 {
			return 0, 0, false
		}
		return v, 100, true
	}
	if a, b, found := strings.Cut(spec, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(a))
		d, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || n < 0 || d <= 0 {
			return 0, 0, false
		}
		return n, d, true
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0, false
	}
	return 1, v, true
}
