package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/faceshadow/internal/engine/shading"
)

const panelWidth = 280

// PanelStatus is the read-only information shown under the slider.
type PanelStatus struct {
	Session       string
	LightPosition [3]float32
	Frames        uint64
	DrawCalls     int
	FPS           float32
}

// DrawLightPanel draws the light controls in the top-right corner of the
// viewport. Nothing is drawn until the control is visible.
func DrawLightPanel(c *LightControl, status PanelStatus) {
	if !c.Visible() {
		return
	}

	vp := imgui.MainViewport()
	workPos := vp.WorkPos()
	workSize := vp.WorkSize()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-panelWidth-10, workPos.Y+10))
	imgui.SetNextWindowSize(imgui.NewVec2(panelWidth, 0))
	imgui.SetNextWindowBgAlpha(0.85)

	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV("Light", nil, flags) {
		v := c.Value()
		imgui.SetNextItemWidth(-1)
		if imgui.SliderFloatV("##rotation", &v, 0, shading.RotationMax, "rotation %.2f", imgui.SliderFlagsNone) {
			c.Set(v)
		}
		if imgui.ButtonV("<", imgui.NewVec2(30, 0)) {
			c.Nudge(-1)
		}
		imgui.SameLine()
		if imgui.ButtonV(">", imgui.NewVec2(30, 0)) {
			c.Nudge(1)
		}
		imgui.SameLine()
		imgui.TextDisabled("(arrow keys step by pi/100)")

		imgui.Separator()
		lp := status.LightPosition
		imgui.Text(fmt.Sprintf("light  %.2f %.2f %.2f", lp[0], lp[1], lp[2]))
		imgui.Text(fmt.Sprintf("frames %d  draws %d", status.Frames, status.DrawCalls))
		imgui.Text(fmt.Sprintf("%.0f fps", status.FPS))
		imgui.TextDisabled(status.Session)
	}
	imgui.End()
}
