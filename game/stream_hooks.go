package game

// publishFrame broadcasts a frame when streaming is on and the tick lands on
// the frame interval.
func (g *Game) publishFrame() {
	if g.stream == nil || !shouldPublish(g.sim.Tick(), g.frameInterval) {
		return
	}
	g.stream.Broadcast(g.frames.Build(g.sim))
}

// shouldPublish reports whether tick is a frame tick for interval.
func shouldPublish(tick, interval int32) bool {
	return interval > 0 && tick%interval == 0
}
