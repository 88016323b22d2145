/*package checkpoint writes particle stores to disk and reads them back.
Each variable is packed into a contiguous array and compressed
separately with zstd.*/
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"

	"github.com/phil-mansfield/picswarm/lib/particles"
)

const (
	// MagicNumber is an arbitrary number at the start of all checkpoint
	// files which should help identify when the code is run on something
	// else by accident.
	MagicNumber = 0xbadf00d1
	// ReverseMagicNumber is the magic number if read on a machine with
	// flipped endianness.
	ReverseMagicNumber = 0xd100dfba
	Version            = 1

	// CompressionLevel is the zstd level used for every variable.
	CompressionLevel = 1

	// MaxVariables and MaxNameLen bound the header fields Read will
	// accept.
	MaxVariables = 1 << 12
	MaxNameLen   = 1 << 10
)

type header struct {
	Magic, Version uint32
	Count, Vars    int64
}

type varHeader struct {
	Kind, Count int32
	NameLen     int64
}

// Write writes the particles of store to wr in the native byte order.
func Write(wr io.Writer, store *particles.Store) error {
	return write(wr, store, particles.ByteOrder())
}

func write(wr io.Writer, store *particles.Store, order binary.ByteOrder) error {
	vars := store.Variables()
	hd := header{MagicNumber, Version, int64(store.Count()), int64(len(vars))}
	if err := binary.Write(wr, order, &hd); err != nil {
		return err
	}

	var b, buf []byte
	for _, v := range vars {
		vh := varHeader{int32(v.Kind()), int32(v.Count()), int64(len(v.Name()))}
		if err := binary.Write(wr, order, &vh); err != nil {
			return err
		}
		if _, err := io.WriteString(wr, v.Name()); err != nil {
			return err
		}

		b = store.VariableBytes(v, b)
		if order != particles.ByteOrder() {
			swap(b, v.Kind().Size())
		}
		buf = buf[:0]
		if len(b) > 0 {
			var err error
			buf, err = zstd.CompressLevel(buf, b, CompressionLevel)
			if err != nil {
				return err
			}
		}
		if err := binary.Write(wr, order, int64(len(buf))); err != nil {
			return err
		}
		if _, err := wr.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Read reads a store written by Write. The new store is given the
// specified name and layout, which need not match the written store's.
// Data written on a machine with the other byte order is swapped.
func Read(rd io.Reader, name string, layout particles.Layout) (*particles.Store, error) {
	hd := header{}
	if err := binary.Read(rd, binary.LittleEndian, &hd.Magic); err != nil {
		return nil, err
	}

	var order binary.ByteOrder
	switch hd.Magic {
	case MagicNumber:
		order = binary.LittleEndian
	case ReverseMagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("Checkpoint starts with 0x%x, not the magic "+
			"number 0x%x. It is probably not a picswarm checkpoint.",
			hd.Magic, uint32(MagicNumber))
	}

	if err := binary.Read(rd, order, &hd.Version); err != nil {
		return nil, err
	} else if hd.Version != Version {
		return nil, fmt.Errorf("Checkpoint has version %d, but only "+
			"version %d is supported.", hd.Version, Version)
	}
	if err := binary.Read(rd, order, &hd.Count); err != nil {
		return nil, err
	}
	if err := binary.Read(rd, order, &hd.Vars); err != nil {
		return nil, err
	}
	if hd.Count < 0 {
		return nil, fmt.Errorf("Checkpoint has %d particles.", hd.Count)
	} else if hd.Vars < 0 || hd.Vars > MaxVariables {
		return nil, fmt.Errorf("Checkpoint has %d variables, but must "+
			"have between 0 and %d.", hd.Vars, MaxVariables)
	}

	store := particles.NewStore(name, layout)
	data := make([][]byte, hd.Vars)
	vars := make([]*particles.Variable, hd.Vars)
	blk := &bytes.Buffer{}
	for i := range vars {
		vh := varHeader{}
		if err := binary.Read(rd, order, &vh); err != nil {
			return nil, err
		}
		if vh.NameLen < 0 || vh.NameLen > MaxNameLen {
			return nil, fmt.Errorf("Variable %d has a name of length %d, "+
				"but names must be between 0 and %d bytes long.",
				i, vh.NameLen, MaxNameLen)
		}
		varName := make([]byte, vh.NameLen)
		if _, err := io.ReadFull(rd, varName); err != nil {
			return nil, err
		}

		var err error
		vars[i], err = store.AddVariable(
			string(varName), particles.Kind(vh.Kind), int(vh.Count),
		)
		if err != nil {
			return nil, err
		}

		nBuf := int64(0)
		if err = binary.Read(rd, order, &nBuf); err != nil {
			return nil, err
		}
		if nBuf < 0 {
			return nil, fmt.Errorf("Variable '%s' has a compressed block "+
				"of %d bytes.", varName, nBuf)
		} else if nBuf == 0 {
			data[i] = []byte{}
		} else {
			// The buffer grows as bytes arrive, so a bogus length in a
			// truncated file can't force a large allocation.
			blk.Reset()
			if _, err = io.CopyN(blk, rd, nBuf); err != nil {
				return nil, fmt.Errorf("Could not read the %d byte block "+
					"of variable '%s': %s", nBuf, varName, err.Error())
			}
			if data[i], err = zstd.Decompress(nil, blk.Bytes()); err != nil {
				return nil, err
			}
		}

		size := int64(vars[i].Size())
		if int64(len(data[i]))%size != 0 ||
			int64(len(data[i]))/size != hd.Count {
			return nil, fmt.Errorf("Variable '%s' has %d bytes of data, "+
				"but %d particles need %d bytes each.",
				varName, len(data[i]), hd.Count, size)
		}
		if order != particles.ByteOrder() {
			swap(data[i], vars[i].Kind().Size())
		}
	}

	if err := store.SetCount(int(hd.Count)); err != nil {
		return nil, err
	}
	for i := range vars {
		if err := store.SetVariableBytes(vars[i], data[i]); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// WriteFile writes store to the file fname.
func WriteFile(fname string, store *particles.Store) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(f, store); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads the checkpoint file fname.
func ReadFile(fname, name string, layout particles.Layout) (*particles.Store, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, name, layout)
}

// swap reverses the byte order of every size-byte word in b.
func swap(b []byte, size int) {
	for i := 0; i+size <= len(b); i += size {
		w := b[i : i+size]
		for j, k := 0, size-1; j < k; j, k = j+1, k-1 {
			w[j], w[k] = w[k], w[j]
		}
	}
}
