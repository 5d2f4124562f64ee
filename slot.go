package animgraph

// evalSlot resolves a Slot node: plays the first queued Instance.Slots entry
// whose name matches the node, blending it over the node's input pose using
// blend-in/out windows based on time-to-end and time-since-start (spec
// §4.7).
func evalSlot(c *Context, n *Node, inputBoxID int) *Pose {
	inputPose := resolvePoseInputByBox(c, n, inputBoxID)
	bucket := &c.bucket(n).Slot
	if bucket.CurrentSlot < 0 {
		idx := findMatchingSlot(c, n.Name)
		if idx < 0 {
			return inputPose
		}
		bucket.CurrentSlot = idx
		bucket.TimePosition = 0
		bucket.LoopsDone = 0
		bucket.LoopsRemaining = c.inst.Slots[idx].LoopCount
	}

	req := &c.inst.Slots[bucket.CurrentSlot]
	if req.Paused {
		return inputPose
	}

	if req.Reset {
		next := findMatchingSlot(c, n.Name)
		if next >= 0 && next != bucket.CurrentSlot {
			bucket.CurrentSlot = next
			bucket.TimePosition = 0
			bucket.LoopsDone = 0
			bucket.LoopsRemaining = c.inst.Slots[next].LoopCount
			req = &c.inst.Slots[next]
		} else {
			releaseSlot(bucket)
			return inputPose
		}
	}

	prevTime := bucket.TimePosition
	newTime := prevTime + c.dt*float64(req.Speed)

	clipPose := c.poseCache.get()
	loop := req.LoopCount != 0
	sampleClip(c, req.Clip, prevTime, newTime, loop, req.Speed, nil, c.graph.BaseSkeleton, clipPose)
	bucket.TimePosition = wrapOrClamp(newTime, req.Clip.Length, loop)

	if newTime >= req.Clip.Length && !loop {
		bucket.LoopsDone++
	} else if newTime >= req.Clip.Length && req.LoopCount > 0 {
		bucket.LoopsDone++
		if bucket.LoopsRemaining > 0 {
			bucket.LoopsRemaining--
		}
	}

	timeToEnd := req.Clip.Length - bucket.TimePosition
	var weight float32 = 1
	if req.BlendInTime > 0 && bucket.TimePosition < float64(req.BlendInTime) {
		weight = float32(bucket.TimePosition) / req.BlendInTime
	}
	if req.BlendOutTime > 0 && timeToEnd < float64(req.BlendOutTime) {
		w := float32(timeToEnd) / req.BlendOutTime
		if w < weight {
			weight = w
		}
	}
	weight = clamp01(weight)

	completed := bucket.LoopsRemaining == 0 && timeToEnd <= 0
	if completed {
		releaseSlot(bucket)
	}

	return blendPoses(c, inputPose, clipPose, weight)
}

func releaseSlot(bucket *SlotBucket) {
	bucket.CurrentSlot = -1
	bucket.TimePosition = 0
	bucket.BlendProgress = 0
}

func findMatchingSlot(c *Context, name string) int {
	for i, req := range c.inst.Slots {
		if req.Name == name {
			return i
		}
	}
	return -1
}

func resolvePoseInputByBox(c *Context, n *Node, boxID int) *Pose {
	v := inputValue(c, n, boxID)
	if p := v.AsPose(); p != nil {
		return p
	}
	return c.poseCache.get()
}
