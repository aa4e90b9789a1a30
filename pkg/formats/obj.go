// OBJ (Wavefront) text model parser.

package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrOBJNoFaces      = errors.New("OBJ has no faces")
	ErrOBJBadFace      = errors.New("invalid OBJ face")
	ErrOBJBadNumber    = errors.New("invalid OBJ number")
	ErrOBJIndexRange   = errors.New("OBJ index out of range")
	ErrOBJShortElement = errors.New("OBJ element has too few components")
)

// OBJIndex references one face corner. Indices are zero-based and
// already resolved from negative (relative) form; -1 marks an absent
// texture coordinate or normal.
type OBJIndex struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a single triangle. Polygons are fan-triangulated on load.
type OBJFace struct {
	Corners  [3]OBJIndex
	Material string
	Group    string
}

// OBJ is a parsed Wavefront model.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	Faces        []OBJFace
	MaterialLibs []string
}

// ParseOBJ parses Wavefront OBJ text.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}

	var material, group string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			if v, err = parseVec3(fields[1:]); err == nil {
				obj.Positions = append(obj.Positions, v)
			}
		case "vn":
			var v [3]float32
			if v, err = parseVec3(fields[1:]); err == nil {
				obj.Normals = append(obj.Normals, v)
			}
		case "vt":
			var v [2]float32
			if v, err = parseVec2(fields[1:]); err == nil {
				obj.TexCoords = append(obj.TexCoords, v)
			}
		case "f":
			err = obj.parseFace(fields[1:], material, group)
		case "usemtl":
			material = strings.TrimSpace(strings.TrimPrefix(line, "usemtl"))
		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, fields[1:]...)
		case "o", "g":
			group = strings.TrimSpace(line[len(fields[0]):])
		default:
			// s, l, p and vendor extensions are not needed for rendering.
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	if len(obj.Faces) == 0 {
		return nil, ErrOBJNoFaces
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// Materials returns the material names referenced by faces, in first-use order.
func (o *OBJ) Materials() []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range o.Faces {
		if f.Material == "" || seen[f.Material] {
			continue
		}
		seen[f.Material] = true
		names = append(names, f.Material)
	}
	return names
}

// HasNormals reports whether every corner of the face references a normal.
func (f OBJFace) HasNormals() bool {
	return f.Corners[0].Normal >= 0 && f.Corners[1].Normal >= 0 && f.Corners[2].Normal >= 0
}

// HasTexCoords reports whether every corner of the face references a texture coordinate.
func (f OBJFace) HasTexCoords() bool {
	return f.Corners[0].TexCoord >= 0 && f.Corners[1].TexCoord >= 0 && f.Corners[2].TexCoord >= 0
}

func (o *OBJ) parseFace(fields []string, material, group string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: %d corners", ErrOBJBadFace, len(fields))
	}

	corners := make([]OBJIndex, len(fields))
	for i, f := range fields {
		c, err := o.parseCorner(f)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	// Fan triangulation: (0, i, i+1).
	for i := 1; i+1 < len(corners); i++ {
		o.Faces = append(o.Faces, OBJFace{
			Corners:  [3]OBJIndex{corners[0], corners[i], corners[i+1]},
			Material: material,
			Group:    group,
		})
	}
	return nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn".
func (o *OBJ) parseCorner(s string) (OBJIndex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return OBJIndex{}, fmt.Errorf("%w: corner %q", ErrOBJBadFace, s)
	}

	c := OBJIndex{TexCoord: -1, Normal: -1}
	var err error
	if c.Position, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return OBJIndex{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return OBJIndex{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return OBJIndex{}, err
		}
	}
	return c, nil
}

// resolveIndex converts a one-based or negative OBJ index to zero-based.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOBJBadNumber, s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrOBJIndexRange, n, count)
	}
	return idx, nil
}

func parseFloats(fields []string, dst []float32) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: want %d, got %d", ErrOBJShortElement, len(dst), len(fields))
	}
	for i := range dst {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrOBJBadNumber, fields[i])
		}
		dst[i] = float32(f)
	}
	return nil
}

func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	err := parseFloats(fields, v[:])
	return v, err
}

func parseVec2(fields []string) ([2]float32, error) {
	var v [2]float32
	err := parseFloats(fields, v[:])
	return v, err
}
