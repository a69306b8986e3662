//go:build !unix

package core

// mmapBytes falls back to a plain heap allocation on platforms without an
// anonymous-mapping syscall wrapper in golang.org/x/sys/unix.
func mmapBytes(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func munmapBytes(b []byte) error {
	return nil
}
