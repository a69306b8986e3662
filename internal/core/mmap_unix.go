//go:build unix

package core

import "golang.org/x/sys/unix"

// mmapBytes reserves n anonymous, zero-filled bytes. The backing memory
// is owned by the caller and must be released with munmapBytes.
func mmapBytes(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

func munmapBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
