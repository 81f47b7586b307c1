package terrain

import (
	"encoding/binary"
	"hash/fnv"

	"blockpath"
)

// Registry is a fixed, construction-time set of move classes: blockpath
// assumes move classes never change after the estimator starts (§6 "no
// dynamic discovery of new movement classes after initialization").
type Registry struct {
	classes []blockpath.MoveDef
}

func NewRegistry(classes ...blockpath.MoveDef) *Registry {
	return &Registry{classes: append([]blockpath.MoveDef(nil), classes...)}
}

func (r *Registry) NumClasses() int { return len(r.classes) }

func (r *Registry) ByPathType(i int) blockpath.MoveDef { return r.classes[i] }

// Checksum feeds §3's dataset hash: it must change whenever the set of
// move classes (and their reference counts) changes.
func (r *Registry) Checksum() uint32 {
	h := fnv.New32a()
	var buf [8]byte
	for _, c := range r.classes {
		binary.LittleEndian.PutUint32(buf[0:], uint32(c.PathType))
		binary.LittleEndian.PutUint32(buf[4:], uint32(c.RefCount))
		_, _ = h.Write(buf[:])
	}
	return h.Sum32()
}
