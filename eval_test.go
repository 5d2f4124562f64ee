package animgraph

import (
	"testing"

	"github.com/phanxgames/animgraph/animmath"
)

// buildSingleClipGraph wires one Animation node straight to the graph's
// output, the minimal end-to-end shape exercised by spec §8's "single clip
// loop timing" scenario.
func buildSingleClipGraph(clip *Clip, loop bool) *Graph {
	skeleton := newTestSkeleton()
	animNode := &Node{
		ID:          1,
		Type:        TypeAnimation,
		BucketIndex: 0,
		Boxes:       []Box{{ID: 0}},
		Animation:   &AnimationAux{Clip: clip, Loop: loop, Speed: 1},
	}
	outputNode := &Node{
		ID:          0,
		Type:        TypeOutput,
		BucketIndex: -1,
		Boxes: []Box{
			{ID: 0, Sources: []BoxRef{{NodeID: 1, BoxID: 0}}},
		},
	}
	root := &SubGraph{
		ID:         0,
		Nodes:      map[int]*Node{0: outputNode, 1: animNode},
		OutputNode: 0,
		OutputBox:  0,
	}
	return &Graph{
		Version:          1,
		Root:             root,
		BaseSkeleton:     skeleton,
		TotalBucketCount: 1,
	}
}

func TestEvaluatorUpdateSamplesClipOverTime(t *testing.T) {
	clip := linearXClip(1)
	graph := buildSingleClipGraph(clip, false)
	inst := NewInstance(graph)
	ev := NewEvaluator(inst)

	ev.Update(0.5)
	if x := inst.OutputPoseBones[0].Translation.X; x < 0.499 || x > 0.501 {
		t.Fatalf("after first tick expected X~0.5, got %v", x)
	}

	ev.Update(0.5)
	if x := inst.OutputPoseBones[0].Translation.X; x != 1 {
		t.Fatalf("after second tick expected clip to reach its end (X=1), got %v", x)
	}

	// Non-looping clip must clamp at its end rather than continue advancing.
	ev.Update(0.5)
	if x := inst.OutputPoseBones[0].Translation.X; x != 1 {
		t.Fatalf("expected clamped playback past clip end (X=1), got %v", x)
	}
}

func TestEvaluatorUpdateResetsOnVersionMismatch(t *testing.T) {
	clip := linearXClip(1)
	graph := buildSingleClipGraph(clip, true)
	inst := NewInstance(graph)
	ev := NewEvaluator(inst)

	ev.Update(0.25)
	if inst.version != graph.Version {
		t.Fatalf("expected instance version synced to graph version after first tick")
	}

	graph.Version = 2
	graph.TotalBucketCount = 1
	ev.Update(0.25)
	if inst.version != 2 {
		t.Fatalf("expected instance to resync to new graph version, got %v", inst.version)
	}
	if len(inst.Buckets) != 1 {
		t.Fatalf("expected buckets reallocated to new TotalBucketCount, got %d", len(inst.Buckets))
	}
}

func TestEvaluatorMissingRootProducesBindPose(t *testing.T) {
	skeleton := newTestSkeleton()
	root := &SubGraph{ID: 0, Nodes: map[int]*Node{}, OutputNode: 99, OutputBox: 0}
	graph := &Graph{Version: 1, Root: root, BaseSkeleton: skeleton, TotalBucketCount: 0}
	inst := NewInstance(graph)
	ev := NewEvaluator(inst)

	ev.Update(0.1)

	if len(inst.OutputPoseBones) != 1 {
		t.Fatalf("expected a bind pose with 1 bone, got %d", len(inst.OutputPoseBones))
	}
	if !inst.OutputPoseBones[0].ApproxEqual(animmath.IdentityTransform, 1e-6) {
		t.Fatalf("expected bind pose identity transform, got %+v", inst.OutputPoseBones[0])
	}
}
