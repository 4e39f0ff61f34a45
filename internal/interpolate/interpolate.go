// Package interpolate samples a square source image under an affine
// rotation into a (possibly smaller) destination footprint.
//
// NearestNeighbor trades resample accuracy for exact pixel reuse, useful
// when a caller needs bit-identical samples rather than smoothed ones.
package interpolate

import "math"

// Sampler resamples src (srcSize x srcSize, row-major) into dst
// (dstSize x dstSize, row-major) under inverse rotation by alpha radians
// about each image's own center.
type Sampler interface {
	Sample(src []float32, srcSize int, dst []float32, dstSize int, alpha float64)
}

// Bilinear is the default sampler.
type Bilinear struct{}

func (Bilinear) Sample(src []float32, srcSize int, dst []float32, dstSize int, alpha float64) {
	cosA := math.Cos(alpha)
	sinA := math.Sin(alpha)

	srcCenter := float64(srcSize-1) * 0.5
	dstCenter := float64(dstSize-1) * 0.5

	for dy := 0; dy < dstSize; dy++ {
		py := float64(dy) - dstCenter
		for dx := 0; dx < dstSize; dx++ {
			px := float64(dx) - dstCenter

			sx := px*cosA - py*sinA + srcCenter
			sy := px*sinA + py*cosA + srcCenter

			dstIdx := dy*dstSize + dx
			if sx < 0 || sx > float64(srcSize-1) || sy < 0 || sy > float64(srcSize-1) {
				dst[dstIdx] = 0
				continue
			}

			x0 := int(sx)
			y0 := int(sy)
			x1 := x0 + 1
			y1 := y0 + 1
			if x1 >= srcSize {
				x1 = x0
			}
			if y1 >= srcSize {
				y1 = y0
			}

			rx := sx - float64(x0)
			ry := sy - float64(y0)
			cx := 1 - rx
			cy := 1 - ry

			v00 := float64(src[y0*srcSize+x0])
			v01 := float64(src[y1*srcSize+x0])
			v10 := float64(src[y0*srcSize+x1])
			v11 := float64(src[y1*srcSize+x1])

			dst[dstIdx] = float32(cx*cy*v00 + cx*ry*v01 + rx*cy*v10 + rx*ry*v11)
		}
	}
}

// NearestNeighbor samples the single closest source pixel. It is used for
// exactness tests, and for rotations when nearest_neighbor interpolation
// is configured.
type NearestNeighbor struct{}

func (NearestNeighbor) Sample(src []float32, srcSize int, dst []float32, dstSize int, alpha float64) {
	cosA := math.Cos(alpha)
	sinA := math.Sin(alpha)

	srcCenter := float64(srcSize-1) * 0.5
	dstCenter := float64(dstSize-1) * 0.5

	for dy := 0; dy < dstSize; dy++ {
		py := float64(dy) - dstCenter
		for dx := 0; dx < dstSize; dx++ {
			px := float64(dx) - dstCenter

			sx := px*cosA - py*sinA + srcCenter
			sy := px*sinA + py*cosA + srcCenter

			dstIdx := dy*dstSize + dx
			if sx < 0 || sx > float64(srcSize-1) || sy < 0 || sy > float64(srcSize-1) {
				dst[dstIdx] = 0
				continue
			}

			nx := int(math.Round(sx))
			ny := int(math.Round(sy))
			dst[dstIdx] = src[ny*srcSize+nx]
		}
	}
}

// Mirror performs an in-place horizontal flip of a square image.
func Mirror(img []float32, size int) {
	for y := 0; y < size; y++ {
		row := img[y*size : y*size+size]
		for x, j := 0, size-1; x < j; x, j = x+1, j-1 {
			row[x], row[j] = row[j], row[x]
		}
	}
}
