//go:build !cgo

package audiocapture

func init() {
	Register("portaudio", func() (Backend, error) {
		return nil, ErrUnsupported
	})
}
