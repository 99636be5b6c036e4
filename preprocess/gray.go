package preprocess

import (
	"image"
	"image/draw"
	"sort"
)

// toGray converts any image to 8-bit grayscale. Images that are already
// *image.Gray are returned as-is.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// meanIntensity returns the average pixel value of the image on a 0-255 scale.
func meanIntensity(g *image.Gray) float64 {
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[(y-b.Min.Y)*g.Stride : (y-b.Min.Y)*g.Stride+b.Dx()]
		for _, v := range row {
			sum += uint64(v)
		}
	}
	return float64(sum) / float64(total)
}

// histogram counts pixel values across the image.
func histogram(g *image.Gray) [256]int {
	var hist [256]int
	b := g.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// otsuLevel picks the threshold maximizing between-class variance.
func otsuLevel(g *image.Gray) uint8 {
	hist := histogram(g)
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return 127
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}
	var sumB, wB float64
	var best float64
	var level uint8 = 127
	for i, n := range hist {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(n)
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(i)
		}
	}
	return level
}

// binarize maps pixels above the level to white and the rest to black.
func binarize(g *image.Gray, level uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, v := range src {
			if v > level {
				dst[x] = 255
			} else {
				dst[x] = 0
			}
		}
	}
	return out
}

// invertGray flips pixel polarity in place on a copy.
func invertGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, v := range src {
			dst[x] = 255 - v
		}
	}
	return out
}

// grayAt reads a pixel with edge clamping.
func grayAt(g *image.Gray, x, y int) uint8 {
	b := g.Bounds()
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= b.Dx() {
		x = b.Dx() - 1
	}
	if y >= b.Dy() {
		y = b.Dy() - 1
	}
	return g.Pix[y*g.Stride+x]
}

// medianFilter applies a 3x3 median, removing salt-and-pepper speckle.
func medianFilter(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	window := make([]uint8, 0, 9)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window = append(window, grayAt(g, x+dx, y+dy))
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[y*out.Stride+x] = window[4]
		}
	}
	return out
}

// integralImage returns summed-area values with a one-pixel zero border, so
// the sum over [x0,x1)x[y0,y1) is ii[y1][x1]-ii[y0][x1]-ii[y1][x0]+ii[y0][x0].
func integralImage(g *image.Gray) [][]uint64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	ii := make([][]uint64, h+1)
	ii[0] = make([]uint64, w+1)
	for y := 0; y < h; y++ {
		ii[y+1] = make([]uint64, w+1)
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(g.Pix[y*g.Stride+x])
			ii[y+1][x+1] = ii[y][x+1] + rowSum
		}
	}
	return ii
}

// adaptiveBinarize thresholds each pixel against the mean of its neighborhood
// minus a bias, which copes with uneven lighting across photographed flyers.
func adaptiveBinarize(g *image.Gray, radius int, bias float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	ii := integralImage(g)
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		y0, y1 := y-radius, y+radius+1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > h {
			y1 = h
		}
		for x := 0; x < w; x++ {
			x0, x1 := x-radius, x+radius+1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > w {
				x1 = w
			}
			area := float64((x1 - x0) * (y1 - y0))
			sum := float64(ii[y1][x1] - ii[y0][x1] - ii[y1][x0] + ii[y0][x0])
			if float64(g.Pix[y*g.Stride+x]) > sum/area-bias {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// dilate grows white regions with a 3x3 structuring element.
func dilate(g *image.Gray) *image.Gray {
	return morph(g, func(max, v uint8) uint8 {
		if v > max {
			return v
		}
		return max
	}, 0)
}

// erode shrinks white regions with a 3x3 structuring element.
func erode(g *image.Gray) *image.Gray {
	return morph(g, func(min, v uint8) uint8 {
		if v < min {
			return v
		}
		return min
	}, 255)
}

func morph(g *image.Gray, pick func(acc, v uint8) uint8, seed uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			acc := seed
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					acc = pick(acc, grayAt(g, x+dx, y+dy))
				}
			}
			out.Pix[y*out.Stride+x] = acc
		}
	}
	return out
}
