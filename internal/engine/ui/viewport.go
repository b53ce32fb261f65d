package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/faceshadow/internal/engine/camera"
)

// SceneView shows the offscreen render as a full-viewport background window
// and feeds mouse input to the orbit camera.
type SceneView struct {
	cam          *camera.OrbitCamera
	lastMousePos imgui.Vec2
}

// NewSceneView creates a view driving cam.
func NewSceneView(cam *camera.OrbitCamera) *SceneView {
	return &SceneView{cam: cam}
}

// Size returns the area available for the scene, in pixels.
func (v *SceneView) Size() (width, height int) {
	size := imgui.MainViewport().WorkSize()
	return int(size.X), int(size.Y)
}

// Draw displays texture and handles drag-to-orbit and wheel-to-zoom.
func (v *SceneView) Draw(texture uint32, width, height int) {
	vp := imgui.MainViewport()
	imgui.SetNextWindowPos(vp.WorkPos())
	imgui.SetNextWindowSize(vp.WorkSize())

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoScrollbar | imgui.WindowFlagsNoScrollWithMouse |
		imgui.WindowFlagsNoBringToFrontOnFocus | imgui.WindowFlagsNoCollapse
	if imgui.BeginV("Scene", nil, flags) {
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(texture))
		// GL rows are bottom-up, so flip V.
		imgui.ImageWithBgV(
			*texRef,
			imgui.NewVec2(float32(width), float32(height)),
			imgui.NewVec2(0, 1),
			imgui.NewVec2(1, 0),
			imgui.NewVec4(0, 0, 0, 0),
			imgui.NewVec4(1, 1, 1, 1),
		)

		if imgui.IsItemHovered() {
			mousePos := imgui.MousePos()
			if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
				v.cam.HandleDrag(mousePos.X-v.lastMousePos.X, mousePos.Y-v.lastMousePos.Y)
			}
			v.lastMousePos = mousePos

			if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
				v.cam.HandleZoom(wheel)
			}
		}
	}
	imgui.End()
	imgui.PopStyleVar()
}
