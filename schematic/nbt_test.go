package schematic

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawTag starts an unnamed root compound followed by one named child header.
func rawTag(child tagType, name string) *bytes.Buffer {
	var b bytes.Buffer
	b.WriteByte(byte(tagCompound))
	binary.Write(&b, binary.BigEndian, uint16(0))
	b.WriteByte(byte(child))
	binary.Write(&b, binary.BigEndian, uint16(len(name)))
	b.WriteString(name)
	return &b
}

func TestForgedLengthsFailAtEndOfInput(t *testing.T) {
	list := rawTag(tagList, "L")
	list.WriteByte(byte(tagByte))
	binary.Write(list, binary.BigEndian, int32(maxArrayLen))
	list.Write([]byte{1, 2, 3})

	bytesTag := rawTag(tagByteArray, "B")
	binary.Write(bytesTag, binary.BigEndian, int32(maxArrayLen))
	bytesTag.Write([]byte{1, 2, 3})

	ints := rawTag(tagIntArray, "I")
	binary.Write(ints, binary.BigEndian, int32(maxArrayLen))
	ints.Write([]byte{0, 0, 0, 1})

	for name, raw := range map[string]*bytes.Buffer{"list": list, "byte array": bytesTag, "int array": ints} {
		t.Run(name, func(t *testing.T) {
			_, _, err := newDecoder(raw).root()
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func nestedLists(depth int) *bytes.Buffer {
	b := rawTag(tagList, "L")
	for i := 0; i < depth; i++ {
		b.WriteByte(byte(tagList))
		binary.Write(b, binary.BigEndian, int32(1))
	}
	b.WriteByte(byte(tagByte))
	binary.Write(b, binary.BigEndian, int32(0))
	b.WriteByte(byte(tagEnd))
	return b
}

func TestNestingIsBounded(t *testing.T) {
	_, root, err := newDecoder(nestedLists(100)).root()
	require.NoError(t, err)
	assert.Contains(t, root, "L")

	_, _, err = newDecoder(nestedLists(maxDepth + 10)).root()
	assert.ErrorContains(t, err, "nesting deeper")
}

func TestArraysDecodeBigEndian(t *testing.T) {
	ints := rawTag(tagIntArray, "I")
	binary.Write(ints, binary.BigEndian, int32(2))
	binary.Write(ints, binary.BigEndian, []int32{-1, 70000})
	ints.WriteByte(byte(tagLongArray))
	binary.Write(ints, binary.BigEndian, uint16(1))
	ints.WriteString("J")
	binary.Write(ints, binary.BigEndian, int32(1))
	binary.Write(ints, binary.BigEndian, int64(-5))
	ints.WriteByte(byte(tagEnd))

	_, root, err := newDecoder(ints).root()
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 70000}, root["I"])
	assert.Equal(t, []int64{-5}, root["J"])
}
