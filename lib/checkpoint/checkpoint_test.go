package checkpoint

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/phil-mansfield/picswarm/lib/particles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, layout particles.Layout, n int) *particles.Store {
	s := particles.NewStore("tracers", layout)
	vars := []struct {
		name  string
		kind  particles.Kind
		count int
	}{
		{"coords", particles.Double, 3},
		{"cell", particles.Int, 1},
		{"flag", particles.Char, 1},
		{"mass", particles.Float, 1},
		{"id", particles.Long, 1},
		{"level", particles.Short, 2},
	}
	for _, v := range vars {
		_, err := s.AddVariable(v.name, v.kind, v.count)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetCount(n))

	for _, v := range s.Variables() {
		for i := 0; i < n; i++ {
			for c := 0; c < v.Count(); c++ {
				if v.Kind().IsFloat() {
					s.SetFloat(v, i, c, float64(i)+0.25*float64(c+1))
				} else {
					s.SetInt(v, i, c, int64((i*7+c)%100-50))
				}
			}
		}
	}
	return s
}

func assertSameStore(t *testing.T, a, b *particles.Store) {
	require.Equal(t, a.Count(), b.Count())
	av, bv := a.Variables(), b.Variables()
	require.Equal(t, len(av), len(bv))
	for i := range av {
		assert.Equal(t, av[i].Name(), bv[i].Name())
		assert.Equal(t, av[i].Kind(), bv[i].Kind())
		assert.Equal(t, av[i].Count(), bv[i].Count())
		assert.Equal(t, a.VariableBytes(av[i], nil), b.VariableBytes(bv[i], nil),
			"variable '%s'", av[i].Name())
	}
}

func TestRoundTrip(t *testing.T) {
	layouts := []particles.Layout{particles.Interlaced, particles.Block}
	for _, from := range layouts {
		for _, to := range layouts {
			for _, n := range []int{0, 1, 100} {
				s := testStore(t, from, n)
				buf := &bytes.Buffer{}
				require.NoError(t, Write(buf, s))

				out, err := Read(buf, "restart", to)
				require.NoError(t, err)
				assert.Equal(t, "restart", out.Name())
				assert.Equal(t, to, out.Layout())
				assertSameStore(t, s, out)
			}
		}
	}
}

func TestForeignByteOrder(t *testing.T) {
	var foreign binary.ByteOrder = binary.BigEndian
	if particles.ByteOrder() == binary.BigEndian {
		foreign = binary.LittleEndian
	}

	s := testStore(t, particles.Block, 20)
	buf := &bytes.Buffer{}
	require.NoError(t, write(buf, s, foreign))
	out, err := Read(buf, "tracers", particles.Interlaced)
	require.NoError(t, err)
	assertSameStore(t, s, out)

	v, _ := out.Variable("coords")
	assert.Equal(t, 3.25, out.Float(v, 3, 0))
}

func TestBadInput(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8}), "x",
		particles.Interlaced)
	assert.Error(t, err)

	_, err = Read(bytes.NewReader([]byte{}), "x", particles.Interlaced)
	assert.Error(t, err)

	s := testStore(t, particles.Interlaced, 10)
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, s))
	truncated := buf.Bytes()[:buf.Len()-5]
	_, err = Read(bytes.NewReader(truncated), "x", particles.Interlaced)
	assert.Error(t, err)
}

// rawCheckpoint writes a header and, optionally, one variable header and
// name followed by a block length, with no block data.
func rawCheckpoint(
	t *testing.T, hd header, vh *varHeader, name string, nBuf int64,
) []byte {
	buf := &bytes.Buffer{}
	order := particles.ByteOrder()
	require.NoError(t, binary.Write(buf, order, &hd))
	if vh != nil {
		require.NoError(t, binary.Write(buf, order, vh))
		buf.WriteString(name)
		require.NoError(t, binary.Write(buf, order, nBuf))
	}
	return buf.Bytes()
}

func TestBadHeaderLengths(t *testing.T) {
	double := int32(particles.Double)
	tests := []struct {
		hd   header
		vh   *varHeader
		name string
		nBuf int64
	}{
		{header{MagicNumber, Version, 0, -1}, nil, "", 0},
		{header{MagicNumber, Version, 0, MaxVariables + 1}, nil, "", 0},
		{header{MagicNumber, Version, -3, 0}, nil, "", 0},
		{header{MagicNumber, Version, 0, 1}, &varHeader{double, 1, -5}, "", 0},
		{header{MagicNumber, Version, 0, 1},
			&varHeader{double, 1, MaxNameLen + 1}, "", 0},
		{header{MagicNumber, Version, 0, 1}, &varHeader{double, 1, 1}, "x", -8},
		// A block length far past the end of the file.
		{header{MagicNumber, Version, 4, 1},
			&varHeader{double, 1, 1}, "x", 1 << 40},
		// Particles with no data behind them.
		{header{MagicNumber, Version, 1 << 40, 1},
			&varHeader{double, 1, 1}, "x", 0},
	}

	for i := range tests {
		b := rawCheckpoint(t, tests[i].hd, tests[i].vh,
			tests[i].name, tests[i].nBuf)
		var err error
		assert.NotPanics(t, func() {
			_, err = Read(bytes.NewReader(b), "x", particles.Interlaced)
		}, "%d) Read panicked.", i)
		if err == nil {
			t.Errorf("%d) Expected an error, got nil.", i)
		}
	}
}

func TestFiles(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "tracers.chk")
	s := testStore(t, particles.Interlaced, 50)
	require.NoError(t, WriteFile(fname, s))

	out, err := ReadFile(fname, "tracers", particles.Block)
	require.NoError(t, err)
	assertSameStore(t, s, out)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.chk"), "x",
		particles.Block)
	assert.Error(t, err)
}

func TestSwap(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	swap(b, 4)
	assert.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, b)
	swap(b, 1)
	assert.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, b)
}
