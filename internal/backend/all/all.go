// Package all links every backend into the binary.
package all

import (
	_ "github.com/1broseidon/glport/internal/backend/gbm"
	_ "github.com/1broseidon/glport/internal/backend/glx"
	_ "github.com/1broseidon/glport/internal/backend/surfaceless"
	_ "github.com/1broseidon/glport/internal/backend/wgl"
	_ "github.com/1broseidon/glport/internal/backend/x11egl"
)
