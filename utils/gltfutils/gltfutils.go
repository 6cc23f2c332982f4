package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// ExportBinary registers every node not already parented to another node
// into the default scene and writes the document as glb.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	parented := make(map[uint32]bool)
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			parented[child] = true
		}
	}
	for iNode := range doc.Nodes {
		if !parented[uint32(iNode)] {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
