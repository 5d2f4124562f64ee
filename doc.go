// Package animgraph evaluates an animation graph — a directed graph of
// sampled clips, multi-blends, blend-pose crossfades, state machines, slot
// players and instance-data nodes — into a single skeletal pose, a
// root-motion delta and a set of fired events, once per frame, for one
// animated character.
//
// A [Graph] is an immutable definition loaded once and shared by many
// playing characters; each character owns a private [Instance] holding its
// bucket state, parameter overrides and output pose. An [Evaluator] is bound
// to one [Instance] at construction; call [Evaluator.Update] once per tick
// with a delta time to advance it:
//
//	g, err := animgraph.LoadGraph(blob, skeleton)
//	inst := animgraph.NewInstance(g)
//	ev := animgraph.NewEvaluator(inst)
//	ev.Update(dt)
//	pose := inst.OutputPose()
//
// Many instances may be evaluated concurrently on different goroutines, one
// goroutine per instance at a time; each [Evaluator] owns a private scratch
// context that it reuses across its Update calls, and no per-goroutine
// globals are used.
//
// The vector, quaternion and transform primitives used throughout live in
// the sibling [github.com/phanxgames/animgraph/animmath] package.
package animgraph
