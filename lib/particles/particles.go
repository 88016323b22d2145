/*package particles stores the per-particle data of a swarm. All variables
live in one buffer owned by a Store, laid out either interlaced (one record
per particle) or in blocks (one array per variable). Variables can be added
at any time, which relays out and reallocates the whole buffer.*/
package particles

/* This file contains the Store and its Variable registry. */

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unsafe"
)

// Layout is the memory layout policy of a Store. It is fixed when the Store
// is created.
type Layout int

const (
	// Interlaced stores all the variables of a particle contiguously.
	Interlaced Layout = iota
	// Block stores all the particles of a variable contiguously.
	Block
)

func (l Layout) String() string {
	switch l {
	case Interlaced:
		return "Interlaced"
	case Block:
		return "Block"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout converts "Interlaced" or "Block" (in any case) to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "interlaced":
		return Interlaced, nil
	case "block":
		return Block, nil
	}
	return 0, fmt.Errorf("'%s' is not a valid layout. Only 'Interlaced' "+
		"and 'Block' are valid.", name)
}

// blockAlign is the alignment of each variable's block in Block layout, so
// that typed slices over a block are always aligned.
const blockAlign = 8

var byteOrder = systemByteOrder()

// ByteOrder returns the byte order components are stored in.
func ByteOrder() binary.ByteOrder { return byteOrder }

func systemByteOrder() binary.ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Variable describes one named per-particle variable of a Store. Its kind
// and component count never change; its offset is recomputed every time
// the store's variable set changes.
type Variable struct {
	name   string
	kind   Kind
	count  int
	index  int
	offset int
	store  *Store
}

func (v *Variable) Name() string { return v.name }
func (v *Variable) Kind() Kind   { return v.kind }
func (v *Variable) Count() int   { return v.count }

// Index returns the registration order of the variable within its store.
func (v *Variable) Index() int { return v.index }

// Offset returns the byte offset of the variable. For Interlaced stores
// this is the offset within a particle's record, and for Block stores it is
// the offset of the variable's block within the buffer.
func (v *Variable) Offset() int { return v.offset }

// Size returns the number of bytes the variable uses per particle.
func (v *Variable) Size() int { return v.kind.Size() * v.count }

// Store owns the memory of all the particles local to one partition.
type Store struct {
	name   string
	layout Layout

	vars  []*Variable
	index map[string]int

	count, capacity int
	recordSize      int
	buf             []byte

	gen  uint64
	live map[*View]struct{}
}

// frame records where a store's data lived before a relayout.
type frame struct {
	layout     Layout
	buf        []byte
	offsets    []int
	sizes      []int
	recordSize int
	capacity   int
}

func (f *frame) addr(vi, i int) int {
	if f.layout == Interlaced {
		return i*f.recordSize + f.offsets[vi]
	}
	return f.offsets[vi] + i*f.sizes[vi]
}

// NewStore creates an empty store with no particles and no variables.
func NewStore(name string, layout Layout) *Store {
	if layout != Interlaced && layout != Block {
		panic(fmt.Sprintf("Internal error: %s passed to NewStore.", layout))
	}
	return &Store{
		name: name, layout: layout,
		index: map[string]int{}, live: map[*View]struct{}{},
	}
}

func (s *Store) Name() string       { return s.name }
func (s *Store) Layout() Layout     { return s.layout }
func (s *Store) Count() int         { return s.count }
func (s *Store) Capacity() int      { return s.capacity }
func (s *Store) RecordSize() int    { return s.recordSize }
func (s *Store) BufferLen() int     { return len(s.buf) }
func (s *Store) LiveViews() int     { return len(s.live) }
func (s *Store) Generation() uint64 { return s.gen }

// Variables returns the registered variables in registration order.
func (s *Store) Variables() []*Variable {
	out := make([]*Variable, len(s.vars))
	copy(out, s.vars)
	return out
}

// Variable looks up a variable by name.
func (s *Store) Variable(name string) (*Variable, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.vars[i], true
}

// AddVariable registers a new variable with count components of the given
// kind. The buffer is relaid out and reallocated, so every view into the
// store would be invalidated: AddVariable refuses to run while any view is
// live.
func (s *Store) AddVariable(name string, kind Kind, count int) (*Variable, error) {
	if n := len(s.live); n > 0 {
		return nil, &LiveViewConflictError{Store: s.name, Live: n}
	} else if _, ok := s.index[name]; ok {
		return nil, &DuplicateNameError{Store: s.name, Name: name}
	} else if !kind.Valid() {
		return nil, &UnsupportedKindError{Kind: kind.String()}
	} else if count < 1 {
		return nil, &InvalidCountError{
			Name: fmt.Sprintf("The component count of '%s'", name),
			Count: count, Min: 1,
		}
	}

	old := s.frame()
	v := &Variable{name: name, kind: kind, count: count,
		index: len(s.vars), store: s}
	s.vars = append(s.vars, v)
	s.index[name] = v.index
	s.relayout(old, s.capacity)

	return v, nil
}

// Reallocate changes the capacity of the store. Data for particles with
// indices below min(old, new) capacity is preserved and new slots are
// zeroed. If the capacity shrinks below the particle count, the count is
// truncated. All outstanding views become stale.
func (s *Store) Reallocate(capacity int) error {
	if capacity < 0 {
		return &InvalidCountError{
			Name: fmt.Sprintf("The capacity of store '%s'", s.name),
			Count: capacity, Min: 0,
		}
	}
	s.relayout(s.frame(), capacity)
	if s.count > capacity {
		s.count = capacity
	}
	return nil
}

// AddParticles appends n zeroed particles to the store and returns the
// index of the first one.
func (s *Store) AddParticles(n int) (first int, err error) {
	if n < 0 {
		return 0, &InvalidCountError{
			Name: "The number of added particles", Count: n, Min: 0,
		}
	}
	first = s.count
	return first, s.SetCount(s.count + n)
}

// SetCount sets the number of particles in the store. Particles gained this
// way are zeroed. The capacity is doubled (or grown to n, if that's larger)
// when it's too small, which makes outstanding views stale.
func (s *Store) SetCount(n int) error {
	if n < 0 {
		return &InvalidCountError{
			Name: fmt.Sprintf("The particle count of store '%s'", s.name),
			Count: n, Min: 0,
		}
	}

	if n > s.capacity {
		c := 2 * s.capacity
		if c < n {
			c = n
		}
		s.relayout(s.frame(), c)
	}
	if n > s.count {
		s.zero(s.count, n)
	}
	s.count = n
	return nil
}

// frame captures the current layout so that data can be moved out of it.
func (s *Store) frame() *frame {
	f := &frame{
		layout: s.layout, buf: s.buf, recordSize: s.recordSize,
		capacity: s.capacity,
		offsets: make([]int, len(s.vars)), sizes: make([]int, len(s.vars)),
	}
	for i, v := range s.vars {
		f.offsets[i], f.sizes[i] = v.offset, v.Size()
	}
	return f
}

// relayout recomputes variable offsets for the given capacity, allocates a
// new buffer and moves the data described by old into it. It bumps the
// generation and drops all live views.
func (s *Store) relayout(old *frame, capacity int) {
	n := 0
	s.recordSize = 0
	for _, v := range s.vars {
		s.recordSize += v.Size()
	}

	switch s.layout {
	case Interlaced:
		off := 0
		for _, v := range s.vars {
			v.offset = off
			off += v.Size()
		}
		n = capacity * s.recordSize
	case Block:
		for _, v := range s.vars {
			n = align(n, blockAlign)
			v.offset = n
			n += capacity * v.Size()
		}
	}

	buf := allocBytes(n)
	keep := old.capacity
	if capacity < keep {
		keep = capacity
	}
	for vi := range old.offsets {
		size := old.sizes[vi]
		v := s.vars[vi]
		for i := 0; i < keep; i++ {
			src := old.addr(vi, i)
			dst := s.addr(v, i, 0)
			copy(buf[dst:dst+size], old.buf[src:src+size])
		}
	}

	s.buf = buf
	s.capacity = capacity
	s.gen++
	for view := range s.live {
		delete(s.live, view)
	}
}

// zero clears the data of particles in [from, to).
func (s *Store) zero(from, to int) {
	for _, v := range s.vars {
		size := v.Size()
		for i := from; i < to; i++ {
			a := s.addr(v, i, 0)
			b := s.buf[a : a+size]
			for j := range b {
				b[j] = 0
			}
		}
	}
}

func align(n, a int) int {
	if r := n % a; r != 0 {
		return n + a - r
	}
	return n
}

// allocBytes returns a zeroed []byte of length n whose backing array is
// 8-byte aligned.
func allocBytes(n int) []byte {
	words := make([]uint64, (n+7)/8)
	b := *(*[]byte)(unsafe.Pointer(&words))
	hd := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	hd.Len *= 8
	hd.Cap *= 8
	return b[:n]
}

// addr returns the buffer index of component c of particle i of v.
func (s *Store) addr(v *Variable, i, c int) int {
	if s.layout == Interlaced {
		return i*s.recordSize + v.offset + c*v.kind.Size()
	}
	return v.offset + (i*v.count+c)*v.kind.Size()
}

func (s *Store) check(v *Variable, i, c int) {
	if v == nil || v.store != s {
		panic(ErrForeignVariable)
	} else if i < 0 || i >= s.count {
		panic(fmt.Sprintf("Particle index %d is out of range for store "+
			"'%s', which has %d particles.", i, s.name, s.count))
	} else if c < 0 || c >= v.count {
		panic(fmt.Sprintf("Component %d is out of range for '%s', which has "+
			"%d components.", c, v.name, v.count))
	}
}

// Float returns component c of particle i of v as a float64. Integer kinds
// are converted. Float is unguarded: it always reads the current layout.
func (s *Store) Float(v *Variable, i, c int) float64 {
	s.check(v, i, c)
	return readFloat(s.buf[s.addr(v, i, c):], v.kind)
}

// SetFloat sets component c of particle i of v. Values written to integer
// kinds are truncated.
func (s *Store) SetFloat(v *Variable, i, c int, x float64) {
	s.check(v, i, c)
	writeFloat(s.buf[s.addr(v, i, c):], v.kind, x)
}

// Int returns component c of particle i of an integer variable.
func (s *Store) Int(v *Variable, i, c int) int64 {
	s.check(v, i, c)
	if v.kind.IsFloat() {
		panic(fmt.Sprintf("Int() called on '%s', which has kind '%s'.",
			v.name, v.kind))
	}
	return readInt(s.buf[s.addr(v, i, c):], v.kind)
}

// SetInt sets component c of particle i of an integer variable. Values
// outside the kind's range wrap.
func (s *Store) SetInt(v *Variable, i, c int, x int64) {
	s.check(v, i, c)
	if v.kind.IsFloat() {
		panic(fmt.Sprintf("SetInt() called on '%s', which has kind '%s'.",
			v.name, v.kind))
	}
	writeInt(s.buf[s.addr(v, i, c):], v.kind, x)
}

func readInt(b []byte, k Kind) int64 {
	switch k {
	case Char:
		return int64(int8(b[0]))
	case Short:
		return int64(int16(byteOrder.Uint16(b)))
	case Int:
		return int64(int32(byteOrder.Uint32(b)))
	case Long:
		return int64(byteOrder.Uint64(b))
	}
	panic("'Impossible' kind configuration.")
}

func writeInt(b []byte, k Kind, x int64) {
	switch k {
	case Char:
		b[0] = byte(int8(x))
	case Short:
		byteOrder.PutUint16(b, uint16(int16(x)))
	case Int:
		byteOrder.PutUint32(b, uint32(int32(x)))
	case Long:
		byteOrder.PutUint64(b, uint64(x))
	default:
		panic("'Impossible' kind configuration.")
	}
}

func readFloat(b []byte, k Kind) float64 {
	switch k {
	case Float:
		return float64(math.Float32frombits(byteOrder.Uint32(b)))
	case Double:
		return math.Float64frombits(byteOrder.Uint64(b))
	}
	return float64(readInt(b, k))
}

func writeFloat(b []byte, k Kind, x float64) {
	switch k {
	case Float:
		byteOrder.PutUint32(b, math.Float32bits(float32(x)))
	case Double:
		byteOrder.PutUint64(b, math.Float64bits(x))
	default:
		writeInt(b, k, int64(x))
	}
}

// Transfer copies the named variables of the particles at the indices from
// to the particles at the indices to in dest. The variables must exist in
// dest with the same kind and component count. Indices are passed as arrays
// to amortize the cost of error handling.
func (s *Store) Transfer(dest *Store, names []string, from, to []int) error {
	if len(from) != len(to) {
		return fmt.Errorf("'from' index array has length %d, but 'to' has "+
			"length %d.", len(from), len(to))
	}
	for i := range from {
		if from[i] < 0 || from[i] >= s.count {
			return fmt.Errorf("'from' index %d is out of range for store "+
				"'%s', which has %d particles.", from[i], s.name, s.count)
		} else if to[i] < 0 || to[i] >= dest.count {
			return fmt.Errorf("'to' index %d is out of range for store "+
				"'%s', which has %d particles.", to[i], dest.name, dest.count)
		}
	}

	for _, name := range names {
		src, ok := s.Variable(name)
		if !ok {
			return fmt.Errorf("Source store '%s' does not contain the "+
				"variable '%s'.", s.name, name)
		}
		dst, ok := dest.Variable(name)
		if !ok {
			return fmt.Errorf("Destination store '%s' does not contain the "+
				"variable '%s'.", dest.name, name)
		} else if dst.kind != src.kind || dst.count != src.count {
			return fmt.Errorf("Variable '%s' in destination store '%s' has "+
				"%d %s components, but the source has %d %s components.",
				name, dest.name, dst.count, dst.kind, src.count, src.kind)
		}

		size := src.Size()
		for i := range from {
			a, b := s.addr(src, from[i], 0), dest.addr(dst, to[i], 0)
			copy(dest.buf[b:b+size], s.buf[a:a+size])
		}
	}

	return nil
}

// VariableBytes packs the data of v for all particles into buf, which is
// resized as needed and returned. Components are in ByteOrder().
func (s *Store) VariableBytes(v *Variable, buf []byte) []byte {
	if v == nil || v.store != s {
		panic(ErrForeignVariable)
	}
	size := v.Size()
	n := s.count * size
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]

	if s.layout == Block {
		copy(buf, s.buf[v.offset:v.offset+n])
		return buf
	}
	for i := 0; i < s.count; i++ {
		a := s.addr(v, i, 0)
		copy(buf[i*size:(i+1)*size], s.buf[a:a+size])
	}
	return buf
}

// SetVariableBytes is the inverse of VariableBytes.
func (s *Store) SetVariableBytes(v *Variable, buf []byte) error {
	if v == nil || v.store != s {
		return ErrForeignVariable
	}
	size := v.Size()
	if len(buf) != s.count*size {
		return fmt.Errorf("'%s' needs %d bytes for %d particles, but %d "+
			"bytes were given.", v.name, s.count*size, s.count, len(buf))
	}
	for i := 0; i < s.count; i++ {
		a := s.addr(v, i, 0)
		copy(s.buf[a:a+size], buf[i*size:(i+1)*size])
	}
	return nil
}
