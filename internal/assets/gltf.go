package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// ErrNoGeometry is returned for documents without a usable primitive.
var ErrNoGeometry = errors.New("no triangle geometry")

// DecodeGeometry reads the first triangle primitive of a glTF or GLB
// document into the standard interleaved layout. Buffers must be embedded.
// Missing normals point up and missing texture coordinates are zero.
func DecodeGeometry(r io.Reader) (mesh.Geometry, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return mesh.Geometry{}, fmt.Errorf("decoding gltf: %w", err)
	}

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			return primitiveGeometry(doc, prim)
		}
	}
	return mesh.Geometry{}, ErrNoGeometry
}

func primitiveGeometry(doc *gltf.Document, prim *gltf.Primitive) (mesh.Geometry, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return mesh.Geometry{}, fmt.Errorf("%w: no POSITION attribute", ErrNoGeometry)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return mesh.Geometry{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return mesh.Geometry{}, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return mesh.Geometry{}, fmt.Errorf("texture coordinates: %w", err)
		}
	}

	vertices := make([]float32, 0, len(positions)*8)
	for i, p := range positions {
		n := [3]float32{0, 1, 0}
		if i < len(normals) {
			n = normals[i]
		}
		var uv [2]float32
		if i < len(uvs) {
			uv = uvs[i]
		}
		vertices = append(vertices, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return mesh.Geometry{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	return mesh.Geometry{
		Vertices: vertices,
		Indices:  indices,
		Layout:   mesh.StandardLayout(),
	}, nil
}

// LoadGeometry decodes a glTF file from the asset file system and
// registers it under name.
func (c *Catalog) LoadGeometry(name, path string) (mesh.Geometry, error) {
	if g, ok := c.geometries[name]; ok {
		return g, nil
	}
	data, err := c.ReadFile(path)
	if err != nil {
		return mesh.Geometry{}, err
	}
	g, err := DecodeGeometry(bytes.NewReader(data))
	if err != nil {
		return mesh.Geometry{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.AddGeometry(name, g); err != nil {
		return mesh.Geometry{}, err
	}
	logger.Named("assets").Debug("geometry loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("vertices", g.VertexCount()),
		zap.Int("indices", len(g.Indices)),
	)
	return g, nil
}
