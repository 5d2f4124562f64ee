package animgraph

// evalCustom dispatches to a host-registered CustomNodeHandler (spec §4.7).
// If no handler was registered for this node's type name at load time, the
// node behaves as a documented black box and yields the zero value (spec
// §7's "missing asset" fallback policy applied to an unresolved extension
// point).
func evalCustom(c *Context, n *Node, boxID int) Value {
	if n.Custom == nil || n.Custom.Handler == nil {
		return ZeroValue
	}
	return n.Custom.Handler.Evaluate(c, n, boxID)
}

// evalInstanceData resolves an InstanceData node: initializes its bucket
// once from a connected literal box, then returns the held value for the
// rest of the instance's lifetime (spec §4.7).
func evalInstanceData(c *Context, n *Node, boxID int) Value {
	bucket := &c.bucket(n).InstanceData
	slot := boxID
	if slot < 0 || slot >= len(bucket.Values) {
		slot = 0
	}
	if !bucket.Initialized {
		for i := range bucket.Values {
			if i < len(n.Boxes) {
				bucket.Values[i] = inputValue(c, n, n.Boxes[i].ID).AsFloat()
			}
		}
		bucket.Initialized = true
	}
	return FloatValue(bucket.Values[slot])
}
