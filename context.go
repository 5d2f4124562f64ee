package animgraph

// maxCallStackDepth bounds recursive box resolution across nested sub-graphs
// and function calls (spec §4.2, §5's "only hard limit").
const maxCallStackDepth = 100

// maxTracePathDepth caps the node-path tagged onto a trace event (spec §6).
const maxTracePathDepth = 8

// valueCacheKey identifies one resolved box for the per-tick ValueCache.
type valueCacheKey struct {
	graphID int
	nodeID  int
	boxID   int
}

// Context is the per-thread scratch state an Evaluator threads through one
// Update call. Spec §5/§9 are explicit that this must be an ordinary mutable
// parameter, not thread-local storage. Each Evaluator owns one Context, bound
// to a single Instance at construction and reused across that instance's
// ticks; a Context cannot be rebound to another instance.
type Context struct {
	inst  *Instance
	graph *Graph
	dt    float64

	callStack    []*Node
	graphStack   []*SubGraph
	pathStack    []int
	overflowed   bool
	overflowWarn warnOnce

	valueCache map[valueCacheKey]Value
	poseCache  *PoseCache

	// functions records, for each function-call node evaluated this tick,
	// the function sub-graph it called. It is cleared every tick;
	// FunctionInput nodes find their enclosing call through funcCalls, not
	// through this map.
	functions map[int]*SubGraph

	// funcCalls is the live stack of function-call frames; FunctionInput
	// nodes consult its top to find the caller's connected box (spec
	// §4.7).
	funcCalls []funcCallFrame

	tracing bool
}

// funcCallFrame records the caller-side graph and node of an in-flight
// function call, so FunctionInput nodes deeper in the stack can "walk back
// up the call stack" (spec §4.7) without needing the caller's identity
// threaded through every intervening box resolution.
type funcCallFrame struct {
	callerGraph *SubGraph
	callerNode  *Node
}

// newContext builds scratch state for evaluating inst. Reused across ticks
// by the Evaluator rather than reallocated.
func newContext(inst *Instance) *Context {
	return &Context{
		inst:       inst,
		graph:      inst.graph,
		valueCache: make(map[valueCacheKey]Value),
		poseCache:  newPoseCache(inst.graph.BaseSkeleton),
		functions:  make(map[int]*SubGraph),

		overflowWarn: newWarnOnce(),
	}
}

// beginTick resets all per-tick scratch state (spec §4.2 step 2).
func (c *Context) beginTick(dt float64) {
	c.dt = dt
	c.callStack = c.callStack[:0]
	c.graphStack = c.graphStack[:0]
	c.pathStack = c.pathStack[:0]
	c.overflowed = false
	for k := range c.valueCache {
		delete(c.valueCache, k)
	}
	c.poseCache.reset()
	for k := range c.functions {
		delete(c.functions, k)
	}
	c.tracing = Tracing
}

// currentGraph returns the sub-graph currently being evaluated, or the
// instance's top-level graph if the stack is empty.
func (c *Context) currentGraph() *SubGraph {
	if len(c.graphStack) == 0 {
		return c.graph.Root
	}
	return c.graphStack[len(c.graphStack)-1]
}

// pushNode enters node's evaluation, tracking call-stack depth, graph-path
// and node-path. Returns false (and sets the overflow flag) if the call
// stack is already at maxCallStackDepth (spec §4.2 step 3, §7).
func (c *Context) pushNode(n *Node) bool {
	if len(c.callStack) >= maxCallStackDepth {
		c.overflowed = true
		c.overflowWarn.warn("call-stack-overflow", "call stack exceeded %d, aborting traversal", maxCallStackDepth)
		return false
	}
	c.callStack = append(c.callStack, n)
	c.pathStack = append(c.pathStack, n.ID)
	return true
}

// popNode leaves the node most recently entered with pushNode.
func (c *Context) popNode() {
	if len(c.callStack) == 0 {
		return
	}
	c.callStack = c.callStack[:len(c.callStack)-1]
	c.pathStack = c.pathStack[:len(c.pathStack)-1]
}

// pushGraph enters a nested sub-graph (state body, transition rule or
// function body).
func (c *Context) pushGraph(g *SubGraph) {
	c.graphStack = append(c.graphStack, g)
}

func (c *Context) popGraph() {
	if len(c.graphStack) == 0 {
		return
	}
	c.graphStack = c.graphStack[:len(c.graphStack)-1]
}

// tracePath returns a defensive copy of the current node path, capped to
// maxTracePathDepth entries (spec §6).
func (c *Context) tracePath() []int {
	p := c.pathStack
	if len(p) > maxTracePathDepth {
		p = p[len(p)-maxTracePathDepth:]
	}
	return append([]int(nil), p...)
}

// addTraceEvent appends a trace entry to the instance's trace queue when
// tracing is enabled (spec SPEC_FULL §C.1).
func (c *Context) addTraceEvent(nodeID int, clip *Clip, value, value2 float32) {
	if !c.tracing {
		return
	}
	c.inst.TraceQueue = append(c.inst.TraceQueue, TraceEntry{
		NodeID:   nodeID,
		NodePath: c.tracePath(),
		Clip:     clip,
		Value:    value,
		Value2:   value2,
	})
}

// bucket returns the instance bucket for node n, or nil if n carries no
// state.
func (c *Context) bucket(n *Node) *Bucket {
	if n.BucketIndex < 0 || n.BucketIndex >= len(c.inst.Buckets) {
		return nil
	}
	return &c.inst.Buckets[n.BucketIndex]
}
