package linear

// Option is a function that configures LinReg
type Option func(*LinReg)

// WithShrink sets the L2 shrinkage applied to the coefficients.
// 0 (the default) is ordinary least squares.
func WithShrink(shrink float64) Option {
	return func(r *LinReg) {
		r.shrink = shrink
	}
}
