package overlay

import "fmt"

// Handle identifies a top-level window in the OS window system. Zero means
// no window.
type Handle uint64

// Rect is a window's screen rectangle in pixels, right and bottom exclusive.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (r Rect) Geometry() Geometry {
	return Geometry{
		X:      r.Left,
		Y:      r.Top,
		Width:  r.Right - r.Left,
		Height: r.Bottom - r.Top,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Geometry is the position and size applied to the overlay surface.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSystem is the OS introspection backend the tracker polls.
type WindowSystem interface {
	// IsExclusiveFullscreen reports whether an application currently owns
	// the display in exclusive fullscreen mode.
	IsExclusiveFullscreen() (bool, error)
	ForegroundWindow() (Handle, error)
	// ProcessName resolves the executable file name of the process that
	// owns window.
	ProcessName(window Handle) (string, error)
	WindowRect(window Handle) (Rect, error)
}

// Surface is the overlay window the tracker keeps locked onto the target.
type Surface interface {
	Handle() Handle
	SetGeometry(geometry Geometry) error
	Show() error
	Hide() error
}
