package animgraph

// evalFunction resolves a Function-call node: records the call association,
// pushes the function graph, evaluates its output, and pops (spec §4.7).
func evalFunction(c *Context, n *Node) Value {
	fn := n.FunctionGraph
	if fn == nil || fn.OutputNode == boxSentinel {
		return ZeroValue
	}
	c.functions[n.ID] = fn
	c.funcCalls = append(c.funcCalls, funcCallFrame{callerGraph: c.currentGraph(), callerNode: n})
	c.pushGraph(fn)

	owner := fn.node(fn.OutputNode)
	var result Value
	if owner != nil {
		result = resolveBox(c, owner, fn.OutputBox)
	}

	c.popGraph()
	c.funcCalls = c.funcCalls[:len(c.funcCalls)-1]
	return result
}

// evalFunctionInput resolves a FunctionInput node: finds the innermost
// enclosing function call and, if its corresponding box is wired to
// something, evaluates that box in the caller's graph; otherwise falls back
// to the input node's own default literal (spec §4.7).
func evalFunctionInput(c *Context, n *Node, ordinal int) Value {
	if len(c.funcCalls) == 0 {
		return n.defaultValue(0)
	}
	frame := c.funcCalls[len(c.funcCalls)-1]
	if ordinal < 0 || ordinal >= len(frame.callerNode.Boxes) {
		return n.defaultValue(0)
	}
	callerBox := frame.callerNode.Boxes[ordinal]
	if !callerBox.connected() {
		return n.defaultValue(0)
	}

	// Evaluate the caller's box as if we were back in the caller's graph:
	// temporarily pop our own graph frame, resolve, then push it back.
	top := c.graphStack[len(c.graphStack)-1]
	c.graphStack = c.graphStack[:len(c.graphStack)-1]
	v := inputValue(c, frame.callerNode, callerBox.ID)
	c.graphStack = append(c.graphStack, top)
	return v
}
