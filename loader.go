package animgraph

import (
	"fmt"

	"github.com/phanxgames/animgraph/animmath"
)

// LoadOptions configures LoadGraph via functional options, grounded on
// Carmen-Shannon/oxy-go's AnimatorBuilderOption pattern
// (engine/renderer/animator/animator_builder.go) — the teacher itself has no
// loader to model this on, so the pack's nearest construction-time option
// pattern is reused instead.
type LoadOptions struct {
	clips           []*Clip
	customHandlers  map[string]CustomNodeHandler
	maxTransitions  int
}

// LoadOption configures a LoadOptions value.
type LoadOption func(*LoadOptions)

// WithClips supplies the clip table that Animation/MultiBlend nodes
// reference by index (spec §6: clip handles are a host input, not encoded in
// the graph blob itself).
func WithClips(clips []*Clip) LoadOption {
	return func(o *LoadOptions) { o.clips = clips }
}

// WithCustomHandler registers a host-provided CustomNodeHandler for a
// named custom node type (spec §4.7, §9's "vtable-style trait registered by
// type identifier at graph-load time").
func WithCustomHandler(typeName string, handler CustomNodeHandler) LoadOption {
	return func(o *LoadOptions) {
		if o.customHandlers == nil {
			o.customHandlers = make(map[string]CustomNodeHandler)
		}
		o.customHandlers[typeName] = handler
	}
}

// LoadGraph parses a serialized graph blob into an immutable Graph definition
// (spec §4.1).
//
// Blob layout (little-endian, this module's own format — spec §6 notes the
// real editor's writer format is out of scope, so this is an original
// design choice rather than a port):
//
//	u32 version
//	u32 maxTransitionsPerUpdate
//	u32 paramCount; paramCount * { u32 id, string name, u8 kind, payload }
//	subGraphBlob                     (the root sub-graph)
//
// subGraphBlob:
//
//	i32 outputNode; i32 outputBox
//	u32 nodeCount;  nodeCount * nodeBlob
//	u32 transitionCount; transitionCount * transitionBlob
//
// nodeBlob:
//
//	u32 id; u8 group; u8 type; string name
//	u32 valueCount; valueCount * valueBlob
//	u32 boxCount;   boxCount * { u32 boxID; u32 sourceCount; sourceCount * { u32 nodeID; u32 boxID } }
//	<type-specific payload, see readNodeAux>
func LoadGraph(blob []byte, skeleton *Skeleton, opts ...LoadOption) (*Graph, error) {
	var o LoadOptions
	o.maxTransitions = 0
	for _, opt := range opts {
		opt(&o)
	}

	br := newBinReader(blob)
	version := br.u32()
	if br.err != nil {
		return nil, loadError("reading header", br.err)
	}
	if version != blobVersion {
		return nil, loadError(fmt.Sprintf("blob version %d", version), errUnsupportedBlob)
	}
	maxTransitions := int(br.u32())

	paramCount := br.u32()
	params := make([]Parameter, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		id := ParamID(br.i32())
		name := br.str()
		kind := br.u8()
		def := readValue(br, kind)
		params = append(params, Parameter{ID: id, Name: name, Default: def})
	}
	if br.err != nil {
		return nil, loadError("reading parameter table", br.err)
	}

	bucketCounter := 0
	graphCounter := 0
	root, err := parseSubGraph(br, &o, skeleton, &bucketCounter, &graphCounter)
	if err != nil {
		return nil, loadError("reading root sub-graph", err)
	}
	if root.OutputNode == boxSentinel {
		return nil, loadError("root sub-graph", errNoRootNode)
	}

	g := &Graph{
		Version:                 int(version),
		Root:                    root,
		Params:                  params,
		TotalBucketCount:        bucketCounter,
		BaseSkeleton:            skeleton,
		MaxTransitionsPerUpdate: maxTransitions,
	}
	return g, nil
}

// readValue decodes one literal/default value given its ValueKind byte.
func readValue(br *binReader, kind uint8) Value {
	switch ValueKind(kind) {
	case ValueFloat:
		return FloatValue(br.f32())
	case ValueBool:
		return BoolValue(br.u8() != 0)
	case ValueInt:
		return IntValue(int(br.i32()))
	case ValueVector3:
		return Vector3Value(readVector3(br))
	default:
		return ZeroValue
	}
}

func readVector3(br *binReader) animmath.Vector3 {
	return animmath.Vector3{X: br.f32(), Y: br.f32(), Z: br.f32()}
}

// parseSubGraph decodes one sub-graph blob, assigning it the next value from
// graphCounter so its nodes' cached box values (keyed by (graphID, nodeID,
// boxID) in Context.valueCache) never collide with an unrelated sub-graph
// that happens to reuse the same local node IDs (spec §4.2 step 1).
func parseSubGraph(br *binReader, o *LoadOptions, skeleton *Skeleton, bucketCounter, graphCounter *int) (*SubGraph, error) {
	sg := &SubGraph{
		ID:    *graphCounter,
		Nodes: make(map[int]*Node),
	}
	*graphCounter++
	start := *bucketCounter
	sg.OutputNode = int(br.i32())
	sg.OutputBox = int(br.i32())

	nodeCount := br.u32()
	for i := uint32(0); i < nodeCount; i++ {
		n, err := parseNode(br, o, skeleton, bucketCounter, graphCounter)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		sg.Nodes[n.ID] = n
	}
	if br.err != nil {
		return nil, br.err
	}

	transitionCount := br.u32()
	for i := uint32(0); i < transitionCount; i++ {
		t, err := parseTransition(br, o, skeleton, bucketCounter, graphCounter)
		if err != nil {
			return nil, err
		}
		if t.has(TransitionEnabled) {
			sg.Transitions = append(sg.Transitions, t)
		} else {
			logf("dropping disabled transition %d", t.ID)
		}
	}
	sg.BucketsStart = start
	sg.BucketsCountSelf = *bucketCounter - start
	return sg, br.err
}

func parseTransition(br *binReader, o *LoadOptions, skeleton *Skeleton, bucketCounter, graphCounter *int) (StateTransition, error) {
	t := StateTransition{
		ID:            int(br.i32()),
		Destination:   int(br.i32()),
		BlendDuration: br.f32(),
		Curve:         BlendCurveKind(br.u8()),
		Flags:         StateTransitionFlags(br.u8()),
	}
	hasRule := br.u8()
	if hasRule != 0 {
		rule, err := parseSubGraph(br, o, skeleton, bucketCounter, graphCounter)
		if err != nil {
			return t, err
		}
		if rule.OutputNode == boxSentinel {
			logf("transition %d rule sub-graph has no root node, dropping rule", t.ID)
		} else {
			t.RuleGraph = rule
		}
	}
	return t, br.err
}

func parseNode(br *binReader, o *LoadOptions, skeleton *Skeleton, bucketCounter, graphCounter *int) (*Node, error) {
	n := &Node{
		ID:          int(br.i32()),
		Group:       NodeGroup(br.u8()),
		Type:        NodeType(br.u8()),
		Name:        br.str(),
		BucketIndex: boxSentinel,
	}

	valueCount := br.u32()
	n.Values = make([]Value, 0, valueCount)
	for i := uint32(0); i < valueCount; i++ {
		kind := br.u8()
		n.Values = append(n.Values, readValue(br, kind))
	}

	boxCount := br.u32()
	n.Boxes = make([]Box, 0, boxCount)
	for i := uint32(0); i < boxCount; i++ {
		b := Box{ID: int(br.i32())}
		srcCount := br.u32()
		for j := uint32(0); j < srcCount; j++ {
			b.Sources = append(b.Sources, BoxRef{NodeID: int(br.i32()), BoxID: int(br.i32())})
		}
		n.Boxes = append(n.Boxes, b)
	}
	if br.err != nil {
		return nil, br.err
	}

	if isStatefulNodeType(n.Type) {
		n.BucketIndex = *bucketCounter
		*bucketCounter++
	}

	if err := readNodeAux(br, o, skeleton, bucketCounter, graphCounter, n); err != nil {
		return nil, err
	}
	return n, br.err
}

// isStatefulNodeType reports whether node type n owns a Bucket slot (spec
// §4.1's stateful-node list: "animation clip, multi-blend, blend-pose, state
// machine, slot, instance data").
func isStatefulNodeType(t NodeType) bool {
	switch t {
	case TypeAnimation, TypeMultiBlend1D, TypeMultiBlend2D, TypeBlendPose,
		TypeStateMachine, TypeSlot, TypeInstanceData:
		return true
	default:
		return false
	}
}

// readNodeAux decodes the per-type auxiliary payload following a node's
// boxes, recursing into owned sub-graphs for state machines, states and
// function bodies so every nested stateful node advances the same
// bucketCounter (spec §4.1).
func readNodeAux(br *binReader, o *LoadOptions, skeleton *Skeleton, bucketCounter, graphCounter *int, n *Node) error {
	switch n.Type {
	case TypeAnimation:
		clipIdx := int(br.i32())
		loop := br.u8() != 0
		speed := br.f32()
		n.Animation = &AnimationAux{Clip: clipAt(o, clipIdx), Loop: loop, Speed: speed}

	case TypeMultiBlend1D:
		count := br.u32()
		aux := &MultiBlend1DAux{}
		for i := uint32(0); i < count; i++ {
			x := br.f32()
			clipIdx := int(br.i32())
			aux.Clips = append(aux.Clips, Blend1DClip{X: x, Clip: clipAt(o, clipIdx)})
		}
		aux.sortedIdx = sortClip1DIndices(aux.Clips)
		n.MultiBlend1D = aux

	case TypeMultiBlend2D:
		count := br.u32()
		aux := &MultiBlend2DAux{}
		for i := uint32(0); i < count; i++ {
			x, y := br.f32(), br.f32()
			clipIdx := int(br.i32())
			aux.Clips = append(aux.Clips, Blend2DClip{X: x, Y: y, Clip: clipAt(o, clipIdx)})
		}
		aux.Triangles = triangulate2D(blend2DPositions(aux.Clips))
		n.MultiBlend2D = aux

	case TypeStateMachine:
		entry := int(br.i32())
		reinit := br.u8() != 0
		body, err := parseSubGraph(br, o, skeleton, bucketCounter, graphCounter)
		if err != nil {
			return err
		}
		n.StateMachine = &StateMachineAux{Graph: body, EntryState: entry, ReinitializeOnBecomingRelevant: reinit}

	case TypeState, TypeAnyState:
		idxCount := br.u32()
		idxs := make([]int, 0, idxCount)
		for i := uint32(0); i < idxCount; i++ {
			idxs = append(idxs, int(br.i32()))
		}
		if n.Type == TypeState {
			body, err := parseSubGraph(br, o, skeleton, bucketCounter, graphCounter)
			if err != nil {
				return err
			}
			n.State = &StateAux{Graph: body, TransitionIdx: idxs}
		} else {
			n.State = &StateAux{TransitionIdx: idxs}
		}

	case TypeFunction:
		body, err := parseSubGraph(br, o, skeleton, bucketCounter, graphCounter)
		if err != nil {
			return err
		}
		n.FunctionGraph = body

	case TypeCustom:
		n.Custom = &CustomAux{Handler: o.customHandlers[n.Name]}

	case TypeBlendPose:
		duration := br.f32()
		curve := BlendCurveKind(br.u8())
		n.BlendPose = &BlendPoseAux{BlendDuration: duration, Curve: curve}

	case TypeTransformNode:
		mode := BoneTransformMode(br.u8())
		boneName := br.str()
		n.Transform = &TransformAux{BoneIndex: boneIndexOf(skeleton, boneName), SourceBoneIndex: boxSentinel, Mode: mode}

	case TypeCopyNode:
		destName := br.str()
		srcName := br.str()
		n.Transform = &TransformAux{
			BoneIndex:       boneIndexOf(skeleton, destName),
			SourceBoneIndex: boneIndexOf(skeleton, srcName),
			Mode:            BoneTransformReplace,
		}

	case TypeAimIK:
		boneName := br.str()
		n.Transform = &TransformAux{BoneIndex: boneIndexOf(skeleton, boneName), SourceBoneIndex: boxSentinel}

	case TypeTwoBoneIK:
		rootName, midName, endName := br.str(), br.str(), br.str()
		n.IK = &IKAux{
			RootBone: boneIndexOf(skeleton, rootName),
			MidBone:  boneIndexOf(skeleton, midName),
			EndBone:  boneIndexOf(skeleton, endName),
		}

	case TypeGetParameter:
		n.Param = &ParamAux{ID: ParamID(br.i32())}

	case TypeFunctionInput:
		n.FuncInput = &FunctionInputAux{Ordinal: int(br.i32())}
	}
	return nil
}

func boneIndexOf(skeleton *Skeleton, name string) int {
	if skeleton == nil {
		return boxSentinel
	}
	return skeleton.BoneIndex(name)
}

func clipAt(o *LoadOptions, idx int) *Clip {
	if idx < 0 || idx >= len(o.clips) {
		return nil
	}
	return o.clips[idx]
}

func blend2DPositions(clips []Blend2DClip) []animmath.Vector2 {
	pts := make([]animmath.Vector2, len(clips))
	for i, c := range clips {
		pts[i] = animmath.Vector2{X: c.X, Y: c.Y}
	}
	return pts
}
