package strip

import "math"

// scale multiplies every channel by k (0..1).
func scale(rgb []byte, k float64) {
	if k >= 1 {
		return
	}
	if k <= 0 {
		clear(rgb)
		return
	}
	for i, v := range rgb {
		rgb[i] = byte(math.Round(float64(v) * k))
	}
}

// whiteCap clamps each LED so r+g+b <= frac*3*255, keeping its hue.
func whiteCap(rgb []byte, frac float64) {
	if frac <= 0 || frac >= 1 {
		return
	}
	limit := frac * 3.0 * 255.0
	for i := 0; i+2 < len(rgb); i += 3 {
		s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
		if s <= limit {
			continue
		}
		k := limit / s
		rgb[i] = byte(math.Round(float64(rgb[i]) * k))
		rgb[i+1] = byte(math.Round(float64(rgb[i+1]) * k))
		rgb[i+2] = byte(math.Round(float64(rgb[i+2]) * k))
	}
}

// estimateAmps approximates strip draw at 20mA per channel at full scale.
func estimateAmps(rgb []byte) float64 {
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255.0 * 0.020
}
