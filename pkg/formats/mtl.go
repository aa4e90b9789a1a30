// MTL (Wavefront material library) parser.

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

// ErrMTLNoMaterial is returned for a statement that appears before any newmtl.
var ErrMTLNoMaterial = errors.New("MTL statement outside of a material")

// MTLMaterial holds the Phong terms of a single newmtl block.
type MTLMaterial struct {
	Name      string
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32

	// DiffuseMap is the map_Kd path as written in the file, empty if absent.
	DiffuseMap string
}

// DefaultMTLMaterial returns the material used for faces without usemtl.
func DefaultMTLMaterial(name string) MTLMaterial {
	return MTLMaterial{
		Name:      name,
		Ambient:   [3]float32{0.2, 0.2, 0.2},
		Diffuse:   [3]float32{0.8, 0.8, 0.8},
		Specular:  [3]float32{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}

// ParseMTL parses a material library. Unknown statements are ignored.
func ParseMTL(data []byte) ([]MTLMaterial, error) {
	var mats []MTLMaterial
	var cur *MTLMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			mats = append(mats, DefaultMTLMaterial(strings.TrimSpace(line[len("newmtl"):])))
			cur = &mats[len(mats)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrMTLNoMaterial)
		}

		var err error
		switch fields[0] {
		case "Ka":
			cur.Ambient, err = parseVec3(fields[1:])
		case "Kd":
			cur.Diffuse, err = parseVec3(fields[1:])
		case "Ks":
			cur.Specular, err = parseVec3(fields[1:])
		case "Ns":
			var f float64
			if len(fields) < 2 {
				err = ErrOBJShortElement
				break
			}
			if f, err = strconv.ParseFloat(fields[1], 32); err == nil {
				cur.Shininess = float32(f)
			}
		case "map_Kd":
			// Options such as -s or -o precede the path; the path is last.
			if len(fields) > 1 {
				cur.DiffuseMap = fields[len(fields)-1]
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return mats, nil
}

// ParseMTLFile parses an MTL file from disk.
func ParseMTLFile(path string) ([]MTLMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	return ParseMTL(data)
}
