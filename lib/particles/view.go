package particles

import (
	"fmt"
	"reflect"
	"unsafe"
)

// View is a zero-copy handle on one variable of a Store. A View is only
// valid until the next structural change of its store (AddVariable,
// Reallocate, or a SetCount/AddParticles that grows the capacity) or until
// it is released. Access through a stale View panics with a *StaleViewError
// instead of touching memory the store no longer uses.
//
// A store counts its live views and will not add variables while any exist,
// so views should be released as soon as they're no longer needed.
type View struct {
	store    *Store
	v        *Variable
	gen      uint64
	released bool
}

// GetView returns a new live View of v.
func (s *Store) GetView(v *Variable) (*View, error) {
	if v == nil || v.store != s {
		return nil, ErrForeignVariable
	}
	view := &View{store: s, v: v, gen: s.gen}
	s.live[view] = struct{}{}
	return view, nil
}

// Variable returns the variable the view was created for.
func (view *View) Variable() *Variable { return view.v }

// Valid returns true if the view can still be used.
func (view *View) Valid() bool {
	return !view.released && view.gen == view.store.gen
}

// Err returns a *StaleViewError if the view can no longer be used and nil
// otherwise.
func (view *View) Err() error {
	if view.released || view.gen != view.store.gen {
		return &StaleViewError{
			Variable: view.v.name, Generation: view.gen,
			Current: view.store.gen, Released: view.released,
		}
	}
	return nil
}

// Release removes the view from its store's live set. Releasing a stale or
// already released view is a no-op.
func (view *View) Release() {
	if view.released {
		return
	}
	view.released = true
	delete(view.store.live, view)
}

func (view *View) guard() {
	if err := view.Err(); err != nil {
		panic(err)
	}
}

// Len returns the number of particles in the store.
func (view *View) Len() int {
	view.guard()
	return view.store.count
}

// Width returns the number of components per particle.
func (view *View) Width() int { return view.v.count }

func (view *View) Float(i, c int) float64 {
	view.guard()
	return view.store.Float(view.v, i, c)
}

func (view *View) SetFloat(i, c int, x float64) {
	view.guard()
	view.store.SetFloat(view.v, i, c, x)
}

func (view *View) Int(i, c int) int64 {
	view.guard()
	return view.store.Int(view.v, i, c)
}

func (view *View) SetInt(i, c int, x int64) {
	view.guard()
	view.store.SetInt(view.v, i, c, x)
}

// contiguous returns the bytes backing the view if the variable's data is
// stored contiguously, which is the case for Block stores and for
// Interlaced stores with a single variable.
func (view *View) contiguous(k Kind) ([]byte, error) {
	if err := view.Err(); err != nil {
		return nil, err
	}
	s, v := view.store, view.v
	if v.kind != k {
		return nil, fmt.Errorf("'%s' has kind '%s', not '%s'.", v.name, v.kind, k)
	} else if s.layout != Block && len(s.vars) != 1 {
		return nil, fmt.Errorf("'%s' is interlaced with %d other variables "+
			"in store '%s', so its data is not contiguous.",
			v.name, len(s.vars)-1, s.name)
	}
	n := s.count * v.Size()
	return s.buf[v.offset : v.offset+n : v.offset+n], nil
}

// cast reinterprets b as a slice of elements of the given size. The
// returned header is written into out, which must point to a slice.
func cast(b []byte, size int, out unsafe.Pointer) {
	hd := (*reflect.SliceHeader)(out)
	*hd = *(*reflect.SliceHeader)(unsafe.Pointer(&b))
	hd.Len /= size
	hd.Cap /= size
}

// Int8s returns the data of a Char variable as a []int8 which aliases the
// store's memory. Element i*Width()+c is component c of particle i. The
// slice must not be used once the view is stale.
func (view *View) Int8s() ([]int8, error) {
	b, err := view.contiguous(Char)
	if err != nil {
		return nil, err
	}
	var x []int8
	cast(b, 1, unsafe.Pointer(&x))
	return x, nil
}

// Int16s is the Short equivalent of Int8s.
func (view *View) Int16s() ([]int16, error) {
	b, err := view.contiguous(Short)
	if err != nil {
		return nil, err
	}
	var x []int16
	cast(b, 2, unsafe.Pointer(&x))
	return x, nil
}

// Int32s is the Int equivalent of Int8s.
func (view *View) Int32s() ([]int32, error) {
	b, err := view.contiguous(Int)
	if err != nil {
		return nil, err
	}
	var x []int32
	cast(b, 4, unsafe.Pointer(&x))
	return x, nil
}

// Int64s is the Long equivalent of Int8s.
func (view *View) Int64s() ([]int64, error) {
	b, err := view.contiguous(Long)
	if err != nil {
		return nil, err
	}
	var x []int64
	cast(b, 8, unsafe.Pointer(&x))
	return x, nil
}

// Float32s is the Float equivalent of Int8s.
func (view *View) Float32s() ([]float32, error) {
	b, err := view.contiguous(Float)
	if err != nil {
		return nil, err
	}
	var x []float32
	cast(b, 4, unsafe.Pointer(&x))
	return x, nil
}

// Float64s is the Double equivalent of Int8s.
func (view *View) Float64s() ([]float64, error) {
	b, err := view.contiguous(Double)
	if err != nil {
		return nil, err
	}
	var x []float64
	cast(b, 8, unsafe.Pointer(&x))
	return x, nil
}
