//go:build linux

package shm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Posix is the real cross-process shared-memory backend: the host creates
// a named POSIX shared-memory object under /dev/shm, sizes it, and maps it
// read/write; the enclave opens the same name and maps it read/write too.
// Ring names follow the sb_recvq_<id>/sb_sendq_<id> convention from
// spec.md §6.
type Posix struct{}

type posixSegment struct {
	name string
	data []byte
	w    []uint64
}

func (s *posixSegment) Words() []uint64 { return s.w }
func (s *posixSegment) Name() string    { return s.name }

func (s *posixSegment) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	return err
}

func mapFd(fd int, length int) ([]byte, error) {
	data, err := unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	return data, nil
}

func wordsView(data []byte) []uint64 {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// shmPath mirrors glibc's shm_open convention: POSIX shared-memory objects
// are just regular files on a tmpfs mounted at /dev/shm on Linux.
func shmPath(name string) string {
	return "/dev/shm/" + name
}

// Create opens (creating if necessary, replacing any stale region) a
// POSIX shared-memory object named name, sizes it for slotCount ring
// slots, and maps it read/write.
func (Posix) Create(name string, slotCount int) (Segment, error) {
	length := ByteLen(slotCount)
	path := shmPath(name)
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o600)
	if err != nil {
		if err == unix.EEXIST {
			_ = unix.Unlink(path)
			fd, err = unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o600)
		}
		if err != nil {
			return nil, fmt.Errorf("shm: open %s: %w", name, err)
		}
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(length)); err != nil {
		return nil, fmt.Errorf("shm: ftruncate %s: %w", name, err)
	}
	data, err := mapFd(fd, length)
	if err != nil {
		return nil, err
	}
	return &posixSegment{name: name, data: data, w: wordsView(data)}, nil
}

// Attach opens an existing POSIX shared-memory object by name (as
// published over the rendezvous socket, see internal/rendezvous) and maps
// it read/write.
func (Posix) Attach(name string) (Segment, error) {
	path := shmPath(name)
	fd, err := unix.Open(path, unix.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: open (attach) %s: %w", name, err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("shm: fstat %s: %w", name, err)
	}
	data, err := mapFd(fd, int(st.Size))
	if err != nil {
		return nil, err
	}
	return &posixSegment{name: name, data: data, w: wordsView(data)}, nil
}

// Unlink removes the named shared-memory object. Safe to call after every
// peer has Close()d its mapping.
func (Posix) Unlink(name string) error {
	if err := unix.Unlink(shmPath(name)); err != nil && err != unix.ENOENT {
		return fmt.Errorf("shm: unlink %s: %w", name, err)
	}
	return nil
}
