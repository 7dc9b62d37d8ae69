//go:build !opencv

package vesselness

func newDefaultConvolver() Convolver { return PureConvolver{} }
