package sample

// DownsampleSamples decimates samples to at most maxPoints, always keeping
// the newest one so the trace ends at the latest reading. dst is reused when
// it has the capacity.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if maxPoints <= 0 {
		return dst[:0]
	}
	if len(samples) <= maxPoints {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst
		}
		// dst too small, allocate new
		result := make([]Sample, len(samples))
		copy(result, samples)
		return result
	}

	// Need to downsample
	if cap(dst) >= maxPoints {
		// Reuse dst
		dst = dst[:0] // Reset length but keep capacity
	} else {
		// Allocate new slice
		dst = make([]Sample, 0, maxPoints)
	}

	if maxPoints == 1 {
		return append(dst, samples[len(samples)-1])
	}
	step := float64(len(samples)-1) / float64(maxPoints-1)
	for i := range maxPoints {
		dst = append(dst, samples[int(float64(i)*step+0.5)])
	}

	return dst
}
