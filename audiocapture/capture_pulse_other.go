//go:build !linux

package audiocapture

func init() {
	Register("pulse", func() (Backend, error) {
		return nil, ErrUnsupported
	})
}
