// Package schematic stores a canvas as an MCEdit .schematic file: a gzipped
// NBT compound with Blocks and Data arrays and a TileEntities list for note
// block pitches.
package schematic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/util"
)

var (
	ErrFormat   = errors.New("malformed schematic")
	ErrTooLarge = errors.New("canvas too large for a schematic")
)

const (
	rootName                  = "Schematic"
	materials                 = "Alpha"
	noteBlockEntity           = "noteblock"
	noteBlockEntityNamespaced = "minecraft:noteblock"
)

// Encode writes the uncompressed NBT form of c.
func Encode(w io.Writer, c *canvas.Canvas) error {
	for _, n := range []int{c.Height(), c.Width(), c.Depth()} {
		if n > math.MaxInt16 {
			return fmt.Errorf("%w: %dx%dx%d", ErrTooLarge, c.Height(), c.Width(), c.Depth())
		}
	}

	kinds := c.Kinds()
	blocks := make([]byte, len(kinds))
	for i, k := range kinds {
		blocks[i] = byte(k)
	}

	e := newEncoder(w)
	e.beginCompound(rootName)
	e.shortTag("Height", int16(c.Height()))
	e.shortTag("Length", int16(c.Width()))
	e.shortTag("Width", int16(c.Depth()))
	e.stringTag("Materials", materials)
	e.byteArrayTag("Blocks", blocks)
	e.byteArrayTag("Data", c.States())
	e.beginList("Entities", tagCompound, 0)

	entities := c.Entities()
	e.beginList("TileEntities", tagCompound, len(entities))
	for _, ent := range entities {
		e.stringTag("id", noteBlockEntity)
		e.byteTag("note", int8(ent.Pitch))
		e.intTag("x", int32(ent.Pos.X))
		e.intTag("y", int32(ent.Pos.Y))
		e.intTag("z", int32(ent.Pos.Z))
		e.endCompound()
	}
	e.endCompound()
	return e.flush()
}

// Write writes c gzip-compressed, the form Minecraft tools load.
func Write(w io.Writer, c *canvas.Canvas) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if err := Encode(zw, c); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func Marshal(c *canvas.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile returns the number of bytes written.
func WriteFile(path string, c *canvas.Canvas) (int, error) {
	data, err := Marshal(c)
	if err != nil {
		return 0, err
	}
	if err := util.WriteFile(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Read loads a gzip-compressed schematic.
func Read(r io.Reader) (*canvas.Canvas, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer zr.Close()
	return Decode(zr)
}

func ReadFile(path string) (*canvas.Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Decode reads the uncompressed NBT form.
func Decode(r io.Reader) (*canvas.Canvas, error) {
	_, root, err := newDecoder(r).root()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	var dims [3]int16
	for i, name := range []string{"Height", "Length", "Width"} {
		v, ok := root[name].(int16)
		if !ok || v <= 0 {
			return nil, fmt.Errorf("%w: bad %s", ErrFormat, name)
		}
		dims[i] = v
	}
	height, width, depth := int(dims[0]), int(dims[1]), int(dims[2])

	blocks, ok := root["Blocks"].([]byte)
	if !ok || len(blocks) != height*width*depth {
		return nil, fmt.Errorf("%w: Blocks does not match %dx%dx%d", ErrFormat, height, width, depth)
	}
	data, ok := root["Data"].([]byte)
	if !ok || len(data) != len(blocks) {
		return nil, fmt.Errorf("%w: Data does not match Blocks", ErrFormat)
	}

	c := canvas.New(height, width, depth)
	for y := 0; y < height; y++ {
		for z := 0; z < width; z++ {
			for x := 0; x < depth; x++ {
				p := canvas.Pos{X: x, Y: y, Z: z}
				i := (y*width+z)*depth + x
				k := block.Kind(blocks[i])
				if !k.Valid() {
					return nil, fmt.Errorf("%w: unknown block id %d at %v", ErrFormat, blocks[i], p)
				}
				c.Set(p, block.Block{Kind: k, State: data[i]})
			}
		}
	}

	tiles, _ := root["TileEntities"].([]any)
	for _, t := range tiles {
		ent, ok := t.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: tile entity is not a compound", ErrFormat)
		}
		if id, _ := ent["id"].(string); id != noteBlockEntity && id != noteBlockEntityNamespaced {
			continue
		}
		note, okNote := ent["note"].(int8)
		x, okX := ent["x"].(int32)
		y, okY := ent["y"].(int32)
		z, okZ := ent["z"].(int32)
		if !okNote || !okX || !okY || !okZ {
			return nil, fmt.Errorf("%w: incomplete note block entity", ErrFormat)
		}
		p := canvas.Pos{X: int(x), Y: int(y), Z: int(z)}
		if !c.Contains(p) {
			return nil, fmt.Errorf("%w: note block entity at %v outside canvas", ErrFormat, p)
		}
		c.AddEntity(p, uint8(note))
	}
	return c, nil
}
