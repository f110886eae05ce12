package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/lensing"
	"github.com/gekko3d/lensing/lensrt/rt/app"
	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/gekko3d/lensing/lensrt/rt/gpu/glbackend"
	"github.com/gekko3d/lensing/lensrt/rt/gpu/wgpubackend"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", lensing.DefaultSettingsPath, "Settings file")
	api := flag.String("api", "", "Render API override: WebGPU or OpenGL")
	shaderPath := flag.String("shader", "", "External geodesic shader; reloaded on change")
	debug := flag.Bool("debug", false, "Enable debug logging")
	export := flag.String("export", "", "Render one WxH frame to -out and exit")
	out := flag.String("out", "blackhole.png", "Export destination (.png, .jpg, .tif, .bmp)")
	flag.Parse()

	log := lensing.NewDefaultLogger("lensing", *debug)
	settings := lensing.LoadSettings(*configPath, log)
	if *api != "" {
		settings.Graphics.SetRenderAPI(*api)
	}
	if settings.Graphics.ShowDebugInfo {
		log.SetDebug(true)
	}

	var exportW, exportH int
	if *export != "" {
		if _, err := fmt.Sscanf(*export, "%dx%d", &exportW, &exportH); err != nil || exportW <= 0 || exportH <= 0 {
			log.Errorf("-export wants WxH, got %q", *export)
			os.Exit(2)
		}
	}

	window, err := lensing.CreateWindow(settings.Graphics.RenderAPI, 1280, 720, "Lensing")
	if err != nil {
		panic(err)
	}
	defer window.Close()

	backend, err := newBackend(window, settings.Graphics)
	if err != nil {
		panic(err)
	}
	fbW, fbH := window.FramebufferSize()
	renderer := app.NewRenderer(backend, log, fbW, fbH, settings.Simulation.ComputeHeight())
	defer renderer.Release()

	engine := lensing.NewEngine(renderer, settings, log)
	if err := engine.Init(); err != nil {
		log.Errorf("%v", err)
	}

	var watcher *lensing.ShaderWatcher
	if *shaderPath != "" {
		src, err := os.ReadFile(*shaderPath)
		if err != nil {
			log.Errorf("read shader: %v", err)
		} else if err := engine.ReloadShader(*shaderPath, string(src)); err == nil {
			log.Infof("Using shader %s", *shaderPath)
		}
		if watcher, err = lensing.WatchShader(*shaderPath, log); err != nil {
			log.Warnf("Hot reload disabled: %v", err)
		}
	}

	if exportW > 0 {
		if err := renderer.ExportHighRes(exportW, exportH, *out, engine.Frame()); err != nil {
			log.Errorf("export: %v", err)
			os.Exit(1)
		}
		return
	}

	application, err := lensing.NewAppBuilder().
		UseLogger(log).
		UseEngine(engine).
		UsePlatform(window).
		UseShaderWatcher(watcher).
		UseDefaultStates().
		Build()
	if err != nil {
		panic(err)
	}
	application.Run()

	if err := settings.Save(*configPath); err != nil {
		log.Errorf("Failed to save settings: %v", err)
	}
}

func newBackend(w *lensing.Window, g lensing.GraphicsSettings) (gpu.Backend, error) {
	if g.RenderAPI == lensing.RenderAPIOpenGL {
		return glbackend.New(w.Glfw, g.VSyncEnabled)
	}
	return wgpubackend.New(w.Glfw, g.VSyncEnabled)
}
