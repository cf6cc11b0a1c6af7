package render

import "fmt"

func overlayPhase(c *Context) error {
	c.Device.DrawOverlay(OverlayLines(c))
	return nil
}

// OverlayLines builds the debug text: frame statistics, the device line
// and whatever the owner adds.
func OverlayLines(c *Context) []string {
	lines := []string{
		fmt.Sprintf("Lights: %d  Objects: %d  Draws: %d  Flushes: %d  Shadow maps: %d",
			len(c.Scene.Lights), len(c.Scene.Objects), c.Stats.Draws, c.Stats.Flushes, c.Stats.ShadowPasses),
		c.Device.Stats(),
	}
	if c.Overlay != nil {
		lines = append(lines, c.Overlay()...)
	}
	return lines
}
