// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package outline

import "github.com/chewxy/math32"

// GaussianKernel returns normalized 1D gaussian weights for a separable
// blur. radius is the number of taps on each side of the center; sigma
// <= 0 derives a sigma from the radius so the outer taps stay
// meaningful.
func GaussianKernel(radius int, sigma float32) []float32 {
	if radius < 1 {
		radius = 1
	}
	if sigma <= 0 {
		sigma = float32(radius) / 2
	}
	weights := make([]float32, 2*radius+1)
	var sum float32
	inv := 1 / (2 * sigma * sigma)
	for i := -radius; i <= radius; i++ {
		w := math32.Exp(-float32(i*i) * inv)
		weights[i+radius] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
