package timing

import (
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"
)

const (
	// 40 buckets allows a value up to 2^46ns which is about 19 hours, long
	// enough for the largest generate phase. 6 bits of entries per bucket
	// keeps a relative error of about 1.5%.
	histEntriesBits = 6
	histBuckets     = 40
	histEntries     = 1 << histEntriesBits
)

// histBucket is the type of a histogram bucket.
type histBucket [histEntries]int64

// loadBucket atomically loads the bucket pointer from the address.
func loadBucket(addr **histBucket) *histBucket {
	return (*histBucket)(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(addr))))
}

// storeBucket atomically stores the bucket pointer into the address.
func storeBucket(addr **histBucket, val *histBucket) {
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(addr)), unsafe.Pointer(val))
}

// lowerValue returns the smallest value that can be stored at the entry.
func lowerValue(bucket uint, entry int) int64 {
	return (1<<bucket-1)<<histEntriesBits + int64(entry<<bucket)
}

// upperValue returns the largest value that can be stored at the entry.
func upperValue(bucket uint, entry int) int64 {
	return lowerValue(bucket, entry) + 1<<bucket - 1
}

// middleValue returns the value halfway through the entry.
func middleValue(bucket uint, entry int) int64 {
	return lowerValue(bucket, entry) + (1 << bucket / 2)
}

// bucketEntry returns where the value v is counted.
func bucketEntry(v int64) (bucket uint64, entry uint64) {
	v += histEntries
	bucket = uint64(bits.Len64(uint64(v))) - histEntriesBits - 1
	entry = uint64(v>>bucket) - histEntries
	return bucket, entry
}

// Histogram counts durations in nanoseconds in exponentially growing
// buckets so that every bucket has the same relative error. It is safe for
// concurrent use.
type Histogram struct {
	total  int64
	sum    int64
	mu     sync.Mutex // protects lazy allocation of buckets
	counts [histBuckets]*histBucket
}

// Observe records the value v. Negative or too large values are dropped.
func (h *Histogram) Observe(v int64) {
	if v < 0 {
		return
	}

	bucket, entry := bucketEntry(v)
	if bucket >= histBuckets || entry >= histEntries {
		return
	}

	b := loadBucket(&h.counts[bucket])
	if b == nil {
		b = h.makeBucket(bucket)
	}
	atomic.AddInt64(&b[entry], 1)
	atomic.AddInt64(&h.sum, v)
	atomic.AddInt64(&h.total, 1)
}

// makeBucket ensures the bucket exists and returns it.
func (h *Histogram) makeBucket(bucket uint64) *histBucket {
	h.mu.Lock()
	b := loadBucket(&h.counts[bucket])
	if b == nil {
		b = new(histBucket)
		storeBucket(&h.counts[bucket], b)
	}
	h.mu.Unlock()
	return b
}

// Total returns the number of observed values.
func (h *Histogram) Total() int64 { return atomic.LoadInt64(&h.total) }

// Sum returns the exact sum of the observed values.
func (h *Histogram) Sum() int64 { return atomic.LoadInt64(&h.sum) }

// Average returns the exact average of the observed values.
func (h *Histogram) Average() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	return float64(h.Sum()) / float64(total)
}

// Quantile returns an estimation of the qth quantile in [0, 1]. The counts
// only grow, so the target computed up front is always reached.
func (h *Histogram) Quantile(q float64) int64 {
	target, acc := int64(q*float64(h.Total())+0.5), int64(0)

	for bucket := range h.counts[:] {
		b := loadBucket(&h.counts[bucket])
		if b == nil {
			continue
		}

		for entry := range b {
			acc += atomic.LoadInt64(&b[entry])
			if acc >= target {
				return middleValue(uint(bucket), entry)
			}
		}
	}

	return lowerValue(histBuckets, 0)
}

// Percentiles calls cb for every non-empty entry in increasing order with
// the largest value of the entry, how many values are at or below it and
// the total. It starts with the smallest value and a count of zero.
func (h *Histogram) Percentiles(cb func(value, count, total int64)) {
	acc, total := int64(0), h.Total()

	for bucket := range h.counts[:] {
		b := loadBucket(&h.counts[bucket])
		if b == nil {
			continue
		}

		for entry := range b {
			count := atomic.LoadInt64(&b[entry])
			if count == 0 {
				continue
			}
			if acc == 0 {
				cb(lowerValue(uint(bucket), entry), 0, total)
			}
			acc += count
			if acc > total {
				total = h.Total()
			}
			cb(upperValue(uint(bucket), entry), acc, total)
		}
	}
}
