package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed materials.yaml
var defaultMaterials []byte

// Material is the specular response of a lit surface.
type Material struct {
	SpecularColor mgl32.Vec3
	Shininess     float32
}

type materialFile struct {
	Materials map[string]struct {
		SpecularColor [3]float32 `yaml:"specular_color"`
		Shininess     float32    `yaml:"shininess"`
	} `yaml:"materials"`
}

// Materials is an immutable name -> Material table.
type Materials struct {
	byName map[string]Material
}

// LoadMaterials parses a YAML material table.
func LoadMaterials(r io.Reader) (Materials, error) {
	var file materialFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Materials{}, fmt.Errorf("parsing materials: %w", err)
	}

	m := Materials{byName: make(map[string]Material, len(file.Materials))}
	for name, raw := range file.Materials {
		if raw.Shininess <= 0 {
			return Materials{}, fmt.Errorf("material %s: shininess must be positive, got %v", name, raw.Shininess)
		}
		m.byName[name] = Material{
			SpecularColor: mgl32.Vec3(raw.SpecularColor),
			Shininess:     raw.Shininess,
		}
	}
	return m, nil
}

// DefaultMaterials returns the built-in table.
func DefaultMaterials() Materials {
	m, err := LoadMaterials(bytes.NewReader(defaultMaterials))
	if err != nil {
		panic(err)
	}
	return m
}

// Get looks a material up by name.
func (m Materials) Get(name string) (Material, error) {
	mat, ok := m.byName[name]
	if !ok {
		return Material{}, fmt.Errorf("material %q: %w", name, ErrKeyNotFound)
	}
	return mat, nil
}

// Names returns the material names, sorted.
func (m Materials) Names() []string {
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
