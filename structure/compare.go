package structure

import "math"

// Confusion holds base pair level prediction counts.
type Confusion struct {
	TP, TN, FP, FN int
}

// Compare counts the base pairs of pred against ref. A predicted pair that
// replaces a different reference pair counts both as a false positive and as
// a false negative. Both structures must have the same length.
func Compare(ref, pred Pairs) (c Confusion) {
	L := ref.Len()
	for i := 1; i <= L && i < len(pred); i++ {
		j1, j2 := ref[i], pred[i]
		switch {
		case j1 > i:
			if j1 == j2 {
				c.TP++
			} else if j2 > i {
				c.FP++
				c.FN++
			} else {
				c.FN++
			}
		case j2 > i:
			c.FP++
		}
	}
	c.TN = L*(L-1)/2 - c.TP - c.FP - c.FN
	return
}

// Accuracy computes sensitivity, positive predictive value, F-value and
// Matthews correlation coefficient. Undefined ratios are reported as 0.
func Accuracy(c Confusion) (sen, ppv, fval, mcc float64) {
	tp, tn, fp, fn := float64(c.TP), float64(c.TN), float64(c.FP), float64(c.FN)
	if tp+fn > 0 {
		sen = tp / (tp + fn)
	}
	if tp+fp > 0 {
		ppv = tp / (tp + fp)
	}
	if sen+ppv > 0 {
		fval = 2 * sen * ppv / (sen + ppv)
	}
	if d := (tp + fp) * (tp + fn) * (tn + fp) * (tn + fn); d > 0 {
		mcc = (tp*tn - fp*fn) / math.Sqrt(d)
	}
	return
}
