package retarget

import (
	"io"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/riftline/league_anm_browser/skeleton"
	"github.com/riftline/league_anm_browser/utils/gltfutils"
)

// ExportGLTF builds a document with one node per bone, posed at the
// skeleton's current rest locals, and one animation carrying the solved
// timelines. Sparse components become independent channels.
func (o *Output) ExportGLTF(skl *skeleton.Skeleton, name string, doc *gltf.Document) error {
	fps := o.Fps
	if fps == 0 {
		fps = 30
	}

	nodeBase := uint32(len(doc.Nodes))
	nodeOf := make(map[string]uint32, len(skl.Bones))
	for i := range skl.Bones {
		bone := &skl.Bones[i]
		rest := bone.CurrentBindLocal

		nodeOf[bone.Name] = nodeBase + uint32(i)
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        bone.Name,
			Translation: rest.Translation,
			Rotation:    rest.Rotation.V.Vec4(rest.Rotation.W),
			Scale:       rest.Scale,
		})
		if bone.Parent != skeleton.NO_PARENT {
			parent := doc.Nodes[nodeBase+uint32(bone.Parent)]
			parent.Children = append(parent.Children, nodeBase+uint32(i))
		}
	}

	animation := &gltf.Animation{Name: name}

	addChannel := func(node uint32, path gltf.TRSProperty, frames []int, output interface{}) {
		times := make([]float32, len(frames))
		for i, f := range frames {
			times[i] = float32(f) / fps
		}

		sampler := uint32(len(animation.Samplers))
		animation.Samplers = append(animation.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, times)),
			Output:        gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, output)),
			Interpolation: gltf.InterpolationLinear,
		})
		animation.Channels = append(animation.Channels, &gltf.Channel{
			Sampler: gltf.Index(sampler),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(node),
				Path: path,
			},
		})
	}

	bones := make([]string, 0, len(o.Bones))
	for boneName := range o.Bones {
		bones = append(bones, boneName)
	}
	sort.Strings(bones)

	for _, boneName := range bones {
		tl := o.Bones[boneName]
		node := nodeOf[boneName]

		if len(tl.Translation) != 0 {
			frames := make([]int, 0, len(tl.Translation))
			for f := range tl.Translation {
				frames = append(frames, f)
			}
			sort.Ints(frames)

			values := make([][3]float32, len(frames))
			for i, f := range frames {
				values[i] = tl.Translation[f]
			}
			addChannel(node, gltf.TRSTranslation, frames, values)
		}

		if len(tl.Rotation) != 0 {
			frames := make([]int, 0, len(tl.Rotation))
			for f := range tl.Rotation {
				frames = append(frames, f)
			}
			sort.Ints(frames)

			values := make([][4]float32, len(frames))
			for i, f := range frames {
				q := tl.Rotation[f]
				values[i] = [4]float32{q.X(), q.Y(), q.Z(), q.W}
			}
			addChannel(node, gltf.TRSRotation, frames, values)
		}

		if len(tl.Scale) != 0 {
			frames := make([]int, 0, len(tl.Scale))
			for f := range tl.Scale {
				frames = append(frames, f)
			}
			sort.Ints(frames)

			values := make([][3]float32, len(frames))
			for i, f := range frames {
				values[i] = tl.Scale[f]
			}
			addChannel(node, gltf.TRSScale, frames, values)
		}
	}

	if len(animation.Channels) != 0 {
		doc.Animations = append(doc.Animations, animation)
	}
	return nil
}

// ExportGLTFBinary writes the solved animation as a self-contained glb.
func (o *Output) ExportGLTFBinary(w io.Writer, skl *skeleton.Skeleton, name string) error {
	doc := gltfutils.NewDocument()
	if err := o.ExportGLTF(skl, name, doc); err != nil {
		return err
	}
	return gltfutils.ExportBinary(w, doc)
}
