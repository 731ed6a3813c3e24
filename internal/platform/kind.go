package platform

import (
	"fmt"
	"strings"
)

// Kind selects a native backend.
type Kind int

const (
	KindGLX Kind = iota + 1
	KindWGL
	KindX11EGL
	KindGBM
	KindSurfacelessEGL
)

var kindNames = map[Kind]string{
	KindGLX:            "glx",
	KindWGL:            "wgl",
	KindX11EGL:         "x11_egl",
	KindGBM:            "gbm",
	KindSurfacelessEGL: "surfaceless_egl",
}

// Kinds returns every known backend kind.
func Kinds() []Kind {
	return []Kind{KindGLX, KindWGL, KindX11EGL, KindGBM, KindSurfacelessEGL}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k names a known backend.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts the names printed by Kind.String, case-insensitively,
// plus a few common spellings.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "x11egl", "egl_x11", "x11":
		return KindX11EGL, nil
	case "surfaceless", "surfacelessegl":
		return KindSurfacelessEGL, nil
	}
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
