package render

import (
	"fmt"
)

// Sequencer runs the phase list for one frame.
type Sequencer struct {
	Phases []Phase
}

func NewSequencer() *Sequencer {
	return &Sequencer{Phases: Phases}
}

// Render draws one frame. A failing phase aborts the rest of the frame; the
// scene is always ended once begun.
func (s *Sequencer) Render(c *Context) (err error) {
	c.Stats = FrameStats{}
	if err := c.Device.BeginScene(); err != nil {
		return fmt.Errorf("begin scene: %w", err)
	}
	defer func() {
		if eerr := c.Device.EndScene(); eerr != nil && err == nil {
			err = fmt.Errorf("end scene: %w", eerr)
		}
		c.Profiler.SetCount("draws", c.Stats.Draws)
		c.Profiler.SetCount("flushes", c.Stats.Flushes)
		c.Profiler.SetCount("shadow maps", c.Stats.ShadowPasses)
		c.Profiler.AddCount("shadow failures", c.Stats.ShadowFailures)
	}()

	for _, p := range s.Phases {
		if p.Enabled != nil && !p.Enabled(c) {
			continue
		}
		c.Profiler.BeginScope(p.Name)
		perr := p.Run(c)
		c.Profiler.EndScope(p.Name)
		if perr != nil {
			return fmt.Errorf("phase %s: %w", p.Name, perr)
		}
	}
	return nil
}
