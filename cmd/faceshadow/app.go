package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/assets"
	"github.com/Faultbox/faceshadow/internal/config"
	"github.com/Faultbox/faceshadow/internal/engine/camera"
	"github.com/Faultbox/faceshadow/internal/engine/debug"
	"github.com/Faultbox/faceshadow/internal/engine/renderer"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/engine/shading"
	"github.com/Faultbox/faceshadow/internal/engine/ui"
	"github.com/Faultbox/faceshadow/internal/logger"
)

const screenshotDir = "screenshots"

// App owns the window, the renderer and the viewing session.
type App struct {
	cfg *config.Config

	backend  *ui.Backend
	renderer *renderer.Renderer
	assets   *assets.Manager

	session *shading.Session
	control *ui.LightControl
	camera  *camera.OrbitCamera
	view    *ui.SceneView

	// Model loading
	cancel  context.CancelFunc
	pending <-chan assets.Result
	loadErr error

	// Screenshot state
	screenshots         *debug.ScreenshotCapture
	screenshotRequested bool
	lastScreenshotMsg   string
	screenshotMsgTime   time.Time
}

// NewApp creates the window and GL state, loads the lightmap and starts
// loading the model in the background.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:         cfg,
		assets:      assets.NewManager(),
		screenshots: debug.NewScreenshotCapture(screenshotDir, "faceshadow"),
	}

	bg := mgl32.Vec3(cfg.Render.Background)
	var err error
	app.backend, err = ui.NewBackend(cfg.Window.Title, int32(cfg.Window.Width), int32(cfg.Window.Height), bg)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := renderer.Init(); err != nil {
		return nil, err
	}

	app.renderer, err = renderer.New(renderer.Config{
		Width:       cfg.Render.ViewportWidth,
		Height:      cfg.Render.ViewportHeight,
		Background:  bg,
		MSAASamples: cfg.Render.MSAASamples,
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	// GL objects must go before the context does.
	app.backend.SetCloseHook(app.renderer.Close)

	lightmap, err := app.assets.LoadLightmap(cfg.Assets.Lightmap)
	if err != nil {
		return nil, err
	}

	app.session = shading.NewSession(lightmap, mgl32.Vec3(cfg.Light.MarkerOffset), cfg.Light.MarkerScale)
	// Debug aid only. The proxy stays hidden unless explicitly asked for.
	app.session.Proxy.Node().Base().Visible = cfg.Light.ShowMarker

	app.control = ui.NewLightControl(app.session.Proxy, app.session.Ctx.Ready)
	app.control.Set(cfg.Light.InitialRotation)

	app.camera = camera.NewOrbitCamera()
	app.camera.Distance = cfg.Camera.Distance
	app.camera.MinDistance = cfg.Camera.MinDistance
	app.camera.MaxDistance = cfg.Camera.MaxDistance
	app.camera.DragSensitivity = cfg.Camera.Sensitivity / 100
	app.camera.FOV = cfg.Camera.FOV
	app.view = ui.NewSceneView(app.camera)

	app.session.Ctx.OnReady(func() {
		app.backend.SetWindowTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, filepath.Base(cfg.Assets.Model)))
	})

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.pending = assets.NewModelLoader(app.assets).LoadAsync(ctx, cfg.Assets.Model)

	logger.Info("session started", zap.String("session", app.session.Ctx.ID.String()))
	return app, nil
}

// Run blocks until the window is closed.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// Close stops any pending load and drops cached assets.
func (app *App) Close() {
	if app.cancel != nil {
		app.cancel()
	}
	app.assets.Close()
}

// render is called each frame.
func (app *App) render() {
	// Capture at the start of the frame so the last rendered image is used.
	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}

	app.pollModel()
	app.handleKeys()

	w, h := app.view.Size()
	if err := app.renderer.Resize(w, h); err != nil {
		logger.Warn("viewport resize failed", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
	}

	app.session.Frame()
	app.renderer.Render(app.session.World, app.camera)

	app.view.Draw(app.renderer.Texture(), w, h)
	ui.DrawLightPanel(app.control, ui.PanelStatus{
		Session:       app.session.Ctx.ID.String(),
		LightPosition: [3]float32(app.session.Ctx.Lighting.LightPosition),
		Frames:        app.session.Updater.Frames(),
		DrawCalls:     app.renderer.Stats().DrawCalls,
		FPS:           imgui.CurrentIO().Framerate(),
	})
	app.drawStatus()
}

// pollModel attaches the model on the render thread once loading finishes.
func (app *App) pollModel() {
	if app.pending == nil {
		return
	}

	var r assets.Result
	select {
	case r = <-app.pending:
	default:
		return
	}
	app.pending = nil

	if r.Err != nil {
		app.loadErr = r.Err
		return
	}

	stats, err := app.session.Attach(r.Model.Root)
	if err != nil {
		app.loadErr = err
		logger.Error("binding model failed", zap.Error(err))
		return
	}
	if min, max, ok := scene.WorldBounds(r.Model.Root); ok {
		app.camera.FitToBounds(min, max)
	}

	logger.Info("model attached",
		zap.String("model", r.Model.ID.String()),
		zap.Int("face", stats.Face),
		zap.Int("rim", stats.Rim),
		zap.Int("skipped", stats.Skipped),
	)
}

func (app *App) handleKeys() {
	if ui.IsKeyPressed(imgui.KeyF12) {
		app.screenshotRequested = true
	}
	if !app.control.Visible() {
		return
	}
	if ui.IsKeyPressed(imgui.KeyLeftArrow) {
		app.control.Nudge(-1)
	}
	if ui.IsKeyPressed(imgui.KeyRightArrow) {
		app.control.Nudge(1)
	}
}

func (app *App) captureScreenshot() {
	path, err := app.screenshots.Capture(app.renderer.Framebuffer())
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		app.lastScreenshotMsg = "Screenshot failed"
	} else {
		logger.Info("screenshot saved", zap.String("path", path))
		app.lastScreenshotMsg = "Saved " + path
	}
	app.screenshotMsgTime = time.Now()
}

// drawStatus shows loading progress, load errors and screenshot notices in
// the bottom-left corner.
func (app *App) drawStatus() {
	var msg string
	switch {
	case app.loadErr != nil:
		msg = "Failed to load model: " + app.loadErr.Error()
	case app.pending != nil:
		msg = "Loading " + filepath.Base(app.cfg.Assets.Model) + "..."
	case app.lastScreenshotMsg != "" && time.Since(app.screenshotMsgTime) < 2*time.Second:
		msg = app.lastScreenshotMsg
	default:
		return
	}

	vp := imgui.MainViewport()
	pos := vp.WorkPos()
	size := vp.WorkSize()
	imgui.SetNextWindowPos(imgui.NewVec2(pos.X+10, pos.Y+size.Y-40))
	imgui.SetNextWindowBgAlpha(0.7)

	flags := imgui.WindowFlagsNoDecoration | imgui.WindowFlagsAlwaysAutoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoFocusOnAppearing | imgui.WindowFlagsNoNav
	if imgui.BeginV("##status", nil, flags) {
		imgui.Text(msg)
	}
	imgui.End()
}
