package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Output is an active RandR output of the connected screen.
type Output struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Outputs lists the active outputs through XRandR. Servers without RandR
// report the whole root window as one output.
func (c *Connection) Outputs() ([]Output, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		screen := c.XUtil.Screen()
		return []Output{{
			Name:   "screen",
			Width:  int(screen.WidthInPixels),
			Height: int(screen.HeightInPixels),
		}}, nil
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []Output
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("crtc%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		outputs = append(outputs, Output{
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return outputs, nil
}
