package geometry

import "fmt"

type StorageKind int

const (
	InMemory StorageKind = iota
	OnDisk
)

func (k StorageKind) String() string {
	if k == OnDisk {
		return "ON_DISK"
	}
	return "IN_MEMORY"
}

// Where an intermediate layer lives. OnDisk layers are written to Path when produced
type Storage struct {
	Kind StorageKind
	Path string
}

func Memory() Storage {
	return Storage{Kind: InMemory}
}

func Disk(path string) Storage {
	return Storage{Kind: OnDisk, Path: path}
}

func (s Storage) String() string {
	if s.Kind == OnDisk {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Path)
	}
	return s.Kind.String()
}
