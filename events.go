package animgraph

// emitEvents scans every event track on clip for keyframes whose window
// crosses [prevPos, newPos] (the clip-local, wrapped positions covered by
// this tick) and appends the resulting records to the instance's event
// queue. Point events (Duration == 0) fire once; duration events fire
// OnBegin/OnEvent/OnEnd, bracketed against the instance's active-event set
// so OnBegin/OnEnd fire exactly once per traversal even across loop wraps
// (spec §4.3).
func emitEvents(c *Context, clip *Clip, prevTime, newTime float64, loop bool, length float64) {
	prevPos := wrapOrClamp(prevTime, length, loop)
	newPos := wrapOrClamp(newTime, length, loop)
	backward := newTime < prevTime
	lo, hi := prevPos, newPos
	if backward {
		lo, hi = hi, lo
	}

	for trackIdx := range clip.Events {
		track := &clip.Events[trackIdx]
		for keyIdx := range track.Keyframes {
			kf := &track.Keyframes[keyIdx]
			key := activeEventKey{clip: clip, track: trackIdx, key: keyIdx}

			if kf.Duration <= 0 {
				if kf.Time >= lo && kf.Time <= hi {
					c.inst.EventQueue = append(c.inst.EventQueue, EventRecord{
						Kind: EventPoint, Clip: clip, Time: kf.Time, DT: c.dt, Payload: kf.Payload,
					})
				}
				continue
			}

			windowStart, windowEnd := kf.Time, kf.Time+kf.Duration
			active := c.inst.activeEvents[key]
			crossesStart := windowStart >= lo && windowStart <= hi
			crossesEnd := windowEnd >= lo && windowEnd <= hi
			insideWindow := lo <= windowEnd && hi >= windowStart

			if crossesStart && !active {
				c.inst.activeEvents[key] = true
				c.inst.EventQueue = append(c.inst.EventQueue, EventRecord{
					Kind: EventOnBegin, Clip: clip, Time: windowStart, DT: c.dt, Payload: kf.Payload,
				})
				active = true
			}
			if active && insideWindow {
				c.inst.EventQueue = append(c.inst.EventQueue, EventRecord{
					Kind: EventOnEvent, Clip: clip, Time: newPos, DT: c.dt, Payload: kf.Payload,
				})
			}
			if crossesEnd && active {
				delete(c.inst.activeEvents, key)
				c.inst.EventQueue = append(c.inst.EventQueue, EventRecord{
					Kind: EventOnEnd, Clip: clip, Time: windowEnd, DT: c.dt, Payload: kf.Payload,
				})
			}
		}
	}
}
