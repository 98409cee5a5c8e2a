package replica

// Option configures a single clone call.
type Option func(o *options)

type options struct {
	maxDepth int
}

// WithMaxDepth bounds how many nested values a clone may descend through.
// A clone that goes deeper fails with a DepthError. Zero, the default,
// leaves recursion unbounded.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 0 {
			depth = 0
		}
		o.maxDepth = depth
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
