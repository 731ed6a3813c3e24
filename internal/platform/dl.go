package platform

import "runtime"

func libraryKey(api ContextAPI) string {
	switch api {
	case OpenGL:
		return "gl"
	case OpenGLES1:
		return "gles1"
	default:
		return "gles2"
	}
}

// defaultLibraryNames lists the client API libraries per OS. ES3 entry
// points live in the ES2 library everywhere.
func defaultLibraryNames(api ContextAPI) []string {
	switch runtime.GOOS {
	case "windows":
		switch api {
		case OpenGL:
			return []string{"opengl32.dll"}
		case OpenGLES1:
			return []string{"libGLESv1_CM.dll"}
		default:
			return []string{"libGLESv2.dll"}
		}
	case "darwin":
		switch api {
		case OpenGL:
			return []string{"/System/Library/Frameworks/OpenGL.framework/OpenGL"}
		default:
			return []string{"libGLESv2.dylib"}
		}
	default:
		switch api {
		case OpenGL:
			return []string{"libGL.so.1", "libGL.so"}
		case OpenGLES1:
			return []string{"libGLESv1_CM.so.1", "libGLESv1_CM.so"}
		default:
			return []string{"libGLESv2.so.2", "libGLESv2.so"}
		}
	}
}
