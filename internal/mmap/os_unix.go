//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var madvise = [...]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
	AccessWillNeed:   unix.MADV_WILLNEED,
}

func mapFile(f *os.File, size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, &os.PathError{Op: "mmap", Path: f.Name(), Err: err}
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

func advise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 || int(pattern) >= len(madvise) {
		return nil
	}
	// EINVAL: unaligned slice, hints are optional.
	if err := unix.Madvise(data, madvise[pattern]); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
