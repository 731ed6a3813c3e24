package mcp

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/glport/internal/platform"
)

const x11SocketDir = "/tmp/.X11-unix"

var (
	getenvFn                  = os.Getenv
	readDirFn                 = os.ReadDir
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// resolveDisplay picks the display name for kind. MCP clients often start
// the server without a GUI environment, so X backends fall back from the
// configured name to $DISPLAY and then to the highest-numbered local X
// socket. Other backends get the configured name unchanged.
func resolveDisplay(kind platform.Kind, configured string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if kind != platform.KindGLX && kind != platform.KindX11EGL {
		return ""
	}
	if display := strings.TrimSpace(getenvFn("DISPLAY")); display != "" {
		return display
	}
	return detectDisplayFromSocketFn(x11SocketDir)
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
