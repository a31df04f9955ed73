package schematic

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type tagType byte

const (
	tagEnd tagType = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

// maxArrayLen bounds array and list lengths read from untrusted input.
const maxArrayLen = 64 << 20

// maxDepth bounds list and compound nesting.
const maxDepth = 512

// encoder writes big-endian NBT. The first error sticks and later writes
// are dropped.
type encoder struct {
	w   *bufio.Writer
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriter(w)}
}

func (e *encoder) raw(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.BigEndian, v)
}

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) str(s string) {
	if len(s) > math.MaxUint16 {
		e.err = fmt.Errorf("nbt string of %d bytes is too long", len(s))
		return
	}
	e.raw(uint16(len(s)))
	e.bytes([]byte(s))
}

func (e *encoder) name(t tagType, name string) {
	e.raw(byte(t))
	e.str(name)
}

func (e *encoder) beginCompound(name string) { e.name(tagCompound, name) }
func (e *encoder) endCompound()              { e.raw(byte(tagEnd)) }

func (e *encoder) byteTag(name string, v int8) {
	e.name(tagByte, name)
	e.raw(v)
}

func (e *encoder) shortTag(name string, v int16) {
	e.name(tagShort, name)
	e.raw(v)
}

func (e *encoder) intTag(name string, v int32) {
	e.name(tagInt, name)
	e.raw(v)
}

func (e *encoder) stringTag(name, v string) {
	e.name(tagString, name)
	e.str(v)
}

func (e *encoder) byteArrayTag(name string, v []byte) {
	e.name(tagByteArray, name)
	e.raw(int32(len(v)))
	e.bytes(v)
}

// beginList writes a list header; the caller then writes n unnamed payloads
// of elem.
func (e *encoder) beginList(name string, elem tagType, n int) {
	e.name(tagList, name)
	e.raw(byte(elem))
	e.raw(int32(n))
}

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// decoder reads NBT into plain Go values: int8, int16, int32, int64,
// float32, float64, []byte, string, []any, map[string]any, []int32 and
// []int64.
type decoder struct {
	r     *bufio.Reader
	depth int
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: bufio.NewReader(r)}
}

// read fails with io.ErrUnexpectedEOF when input ends, since every read
// happens inside an open root compound.
func (d *decoder) read(v any) error {
	err := binary.Read(d.r, binary.BigEndian, v)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (d *decoder) str() (string, error) {
	var n uint16
	if err := d.read(&n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) length() (int, error) {
	var n int32
	if err := d.read(&n); err != nil {
		return 0, err
	}
	if n < 0 || n > maxArrayLen {
		return 0, fmt.Errorf("nbt length %d out of range", n)
	}
	return int(n), nil
}

// array reads n elements of size bytes. The buffer grows with the data
// actually present, so a forged length fails at end of input.
func (d *decoder) array(n, size int) ([]byte, error) {
	want := int64(n) * int64(size)
	b, err := io.ReadAll(io.LimitReader(d.r, want))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) != want {
		return nil, io.ErrUnexpectedEOF
	}
	return b, nil
}

// root reads the single named compound at the top of a file.
func (d *decoder) root() (string, map[string]any, error) {
	var t tagType
	if err := d.read(&t); err != nil {
		return "", nil, err
	}
	if t != tagCompound {
		return "", nil, fmt.Errorf("root tag is type %d, want compound", t)
	}
	name, err := d.str()
	if err != nil {
		return "", nil, err
	}
	v, err := d.payload(tagCompound)
	if err != nil {
		return "", nil, err
	}
	return name, v.(map[string]any), nil
}

// nest enters a list or compound; the returned func leaves it.
func (d *decoder) nest() (func(), error) {
	if d.depth >= maxDepth {
		return nil, fmt.Errorf("nbt nesting deeper than %d", maxDepth)
	}
	d.depth++
	return func() { d.depth-- }, nil
}

func (d *decoder) payload(t tagType) (any, error) {
	switch t {
	case tagByte:
		var v int8
		err := d.read(&v)
		return v, err
	case tagShort:
		var v int16
		err := d.read(&v)
		return v, err
	case tagInt:
		var v int32
		err := d.read(&v)
		return v, err
	case tagLong:
		var v int64
		err := d.read(&v)
		return v, err
	case tagFloat:
		var v float32
		err := d.read(&v)
		return v, err
	case tagDouble:
		var v float64
		err := d.read(&v)
		return v, err
	case tagByteArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		return d.array(n, 1)
	case tagString:
		return d.str()
	case tagList:
		var elem tagType
		if err := d.read(&elem); err != nil {
			return nil, err
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		leave, err := d.nest()
		if err != nil {
			return nil, err
		}
		defer leave()
		// grown as items arrive; n comes from the input
		var v []any
		for i := 0; i < n; i++ {
			item, err := d.payload(elem)
			if err != nil {
				return nil, err
			}
			v = append(v, item)
		}
		return v, nil
	case tagCompound:
		leave, err := d.nest()
		if err != nil {
			return nil, err
		}
		defer leave()
		v := map[string]any{}
		for {
			var child tagType
			if err := d.read(&child); err != nil {
				return nil, err
			}
			if child == tagEnd {
				return v, nil
			}
			name, err := d.str()
			if err != nil {
				return nil, err
			}
			item, err := d.payload(child)
			if err != nil {
				return nil, fmt.Errorf("tag %q: %w", name, err)
			}
			v[name] = item
		}
	case tagIntArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		b, err := d.array(n, 4)
		if err != nil {
			return nil, err
		}
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(binary.BigEndian.Uint32(b[4*i:]))
		}
		return v, nil
	case tagLongArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		b, err := d.array(n, 8)
		if err != nil {
			return nil, err
		}
		v := make([]int64, n)
		for i := range v {
			v[i] = int64(binary.BigEndian.Uint64(b[8*i:]))
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown nbt tag type %d", t)
}
