package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/lightrig"
	"github.com/gekko3d/lightrig/rt/app"
	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "lightrig.yaml", "YAML config file")
	scenePath := flag.String("scene", "", "JSON scene description (demo scene when empty)")
	headless := flag.Bool("headless", false, "render into a command recorder instead of a window")
	frames := flag.Int("frames", 0, "frames to render in headless mode")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *scenePath, *headless, *frames, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, scenePath string, headless bool, frames int, debug bool) error {
	cfg, err := lightrig.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || debug
	cfg.Headless = cfg.Headless || headless
	if frames > 0 {
		cfg.Frames = frames
	}
	if scenePath != "" {
		cfg.Scene = scenePath
	}

	log := lightrig.NewDefaultLogger("lightrig", cfg.Debug)

	desc := core.DemoScene()
	if cfg.Scene != "" {
		if desc, err = core.LoadSceneDesc(cfg.Scene); err != nil {
			return err
		}
	}

	ctl, err := lightrig.NewControlBuilder(desc).
		UseConfig(cfg).
		UseLogger(log).
		Build()
	if err != nil {
		return err
	}

	if cfg.Headless {
		return runHeadless(ctl, cfg, log)
	}
	return runWindow(ctl, cfg, log)
}

func runHeadless(ctl *lightrig.Control, cfg lightrig.Config, log lightrig.Logger) error {
	rec := gfx.NewRecorder()
	bb := gfx.SurfaceDesc{Width: cfg.Window.Width, Height: cfg.Window.Height, Format: gfx.FormatRGBA8}
	if err := ctl.OnDeviceCreate(rec, bb); err != nil {
		return err
	}
	defer ctl.OnDeviceDestroy()
	if err := ctl.OnDeviceReset(rec, bb); err != nil {
		return err
	}
	defer ctl.OnDeviceLost()

	for i := 0; i < cfg.Frames; i++ {
		if err := ctl.Draw(); err != nil {
			return err
		}
		s := ctl.Stats()
		log.Infof("frame %d: %d draws, %d flushes, %d shadow passes", i, s.Draws, s.Flushes, s.ShadowPasses)
	}
	log.Infof("%s", rec.Stats())
	log.Debugf("%s", ctl.Profiler().GetStatsString())
	return nil
}

func runWindow(ctl *lightrig.Control, cfg lightrig.Config, log lightrig.Logger) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	host := app.NewHost(window, ctl, log)
	if err := host.Init(); err != nil {
		return err
	}
	defer host.Close()

	host.Run()
	return nil
}
