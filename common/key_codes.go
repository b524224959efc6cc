package common

// Key codes delivered by the window's key callbacks. They match GLFW key codes, which use ASCII for
// printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyH     = 72 // hover highlight
	KeyP     = 80 // profiler
	KeyX     = 88 // x-ray preset
	KeyMinus = 45
	KeyEqual = 61
	KeySpace = 32
	KeyEsc   = 256

	KeyRight = 262
	KeyLeft  = 263
	KeyDown  = 264
	KeyUp    = 265

	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
)
