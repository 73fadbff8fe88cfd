// Package hankel assembles the block Hankel matrices used by the realization
// algorithms, either from sampled channel data or from a sequence of Markov
// parameters. No scaling is applied here.
package hankel

import (
	"fmt"

	"github.com/hammal/ssid/errs"
	"gonum.org/v1/gonum/mat"
)

// Build returns the block Hankel matrix of data (channels x samples) with p
// block rows and as many columns as the record allows
//
//	[ d(0)    d(1)  ...  d(N-p)   ]
//	[ d(1)    d(2)  ...  d(N-p+1) ]
//	[  ...                        ]
//	[ d(p-1)  d(p)  ...  d(N-1)   ]
//
// where d(k) is the channel vector at sample k. The record must hold at least
// p+1 samples.
func Build(data mat.Matrix, p int) (*mat.Dense, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: hankel order p must be positive, got %d", errs.ErrInvalidConfiguration, p)
	}
	_, samples := data.Dims()
	if samples < p+1 {
		return nil, fmt.Errorf("%w: hankel order %d needs at least %d samples, have %d",
			errs.ErrInsufficientData, p, p+1, samples)
	}
	return BuildCols(data, p, samples-p+1)
}

// BuildCols is Build with an explicit number of columns. Column j holds the
// samples j, ..., j+p-1.
func BuildCols(data mat.Matrix, p, cols int) (*mat.Dense, error) {
	if p < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: hankel needs p >= 1 and cols >= 1, got %d, %d",
			errs.ErrInvalidConfiguration, p, cols)
	}
	channels, samples := data.Dims()
	if p+cols-1 > samples {
		return nil, fmt.Errorf("%w: %d block rows and %d columns need %d samples, have %d",
			errs.ErrInsufficientData, p, cols, p+cols-1, samples)
	}
	res := mat.NewDense(channels*p, cols, nil)
	for block := 0; block < p; block++ {
		for channel := 0; channel < channels; channel++ {
			row := block*channels + channel
			for col := 0; col < cols; col++ {
				res.Set(row, col, data.At(channel, block+col))
			}
		}
	}
	return res, nil
}

// Markov returns the block Hankel matrix of Markov parameters
//
//	[ Y(s)        Y(s+1)  ...  Y(s+cols-1)      ]
//	[ Y(s+1)      Y(s+2)  ...  Y(s+cols)        ]
//	[  ...                                      ]
//	[ Y(s+rows-1)         ...  Y(s+rows+cols-2) ]
//
// with s = shift. Every parameter must share the same (r x m) shape.
func Markov(params []*mat.Dense, rows, cols, shift int) (*mat.Dense, error) {
	if rows < 1 || cols < 1 || shift < 0 {
		return nil, fmt.Errorf("%w: markov hankel needs rows, cols >= 1 and shift >= 0, got %d, %d, %d",
			errs.ErrInvalidConfiguration, rows, cols, shift)
	}
	last := shift + rows + cols - 2
	if last >= len(params) {
		return nil, fmt.Errorf("%w: markov hankel %dx%d with shift %d needs %d parameters, have %d",
			errs.ErrInsufficientData, rows, cols, shift, last+1, len(params))
	}
	r, m := params[shift].Dims()
	res := mat.NewDense(rows*r, cols*m, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			y := params[shift+i+j]
			if yr, ym := y.Dims(); yr != r || ym != m {
				return nil, fmt.Errorf("%w: markov parameter %d is %dx%d, expected %dx%d",
					errs.ErrInvalidConfiguration, shift+i+j, yr, ym, r, m)
			}
			res.Slice(i*r, (i+1)*r, j*m, (j+1)*m).(*mat.Dense).Copy(y)
		}
	}
	return res, nil
}
