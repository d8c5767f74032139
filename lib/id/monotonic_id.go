package id

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases. If it overflows, it restarts from 1.
// The counter occupies a whole cache line to avoid false sharing.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

// MonotonicNonZeroID returns a generator of strictly increasing
// non-zero numbers, starting from 1.
func MonotonicNonZeroID() (Generator, error) {
	src := &monotonicNonZeroID{}
	return &defaultID{
		number: src.next,
		str: func() string {
			return strconv.FormatUint(src.next(), 10)
		},
	}, nil
}
