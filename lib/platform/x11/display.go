package x11

import (
	"encoding/binary"

	"threepole/lib/services/overlay"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_PID",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_BYPASS_COMPOSITOR",
}

var _ overlay.WindowSystem = (*Display)(nil)

// Display implements overlay.WindowSystem on an X11 connection using EWMH
// properties.
type Display struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
	proc  ProcFS
}

// Open connects to the display named by $DISPLAY.
func Open() (*Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "connect to X server")
	}

	d := &Display{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
		proc:  NewProcFS(),
	}
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "intern atom %s", name)
		}
		d.atoms[name] = reply.Atom
	}
	return d, nil
}

func (d *Display) Close() {
	d.conn.Close()
}

func (d *Display) property(window xproto.Window, atom string, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(d.conn, false, window, d.atoms[atom], atomType, 0, length).Reply()
	if err != nil {
		return nil, errors.Wrapf(err, "get %s of window %#x", atom, window)
	}
	return reply.Value, nil
}

func (d *Display) cardinal(window xproto.Window, atom string, atomType xproto.Atom) (uint32, bool) {
	data, err := d.property(window, atom, atomType, 1)
	if err != nil || len(data) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data), true
}

func (d *Display) ForegroundWindow() (overlay.Handle, error) {
	window, ok := d.cardinal(d.root, "_NET_ACTIVE_WINDOW", xproto.AtomWindow)
	if !ok {
		return 0, errors.New("_NET_ACTIVE_WINDOW not set")
	}
	return overlay.Handle(window), nil
}

// IsExclusiveFullscreen reports whether the active window is fullscreen and
// has asked the compositor to unredirect it.
func (d *Display) IsExclusiveFullscreen() (bool, error) {
	active, err := d.ForegroundWindow()
	if err != nil || active == 0 {
		return false, err
	}
	window := xproto.Window(active)

	bypass, ok := d.cardinal(window, "_NET_WM_BYPASS_COMPOSITOR", xproto.AtomCardinal)
	if !ok || bypass != 1 {
		return false, nil
	}

	states, err := d.property(window, "_NET_WM_STATE", xproto.AtomAtom, 32)
	if err != nil {
		return false, err
	}
	fullscreen := d.atoms["_NET_WM_STATE_FULLSCREEN"]
	for i := 0; i+4 <= len(states); i += 4 {
		if xproto.Atom(binary.LittleEndian.Uint32(states[i:])) == fullscreen {
			return true, nil
		}
	}
	return false, nil
}

func (d *Display) ProcessName(window overlay.Handle) (string, error) {
	pid, ok := d.cardinal(xproto.Window(window), "_NET_WM_PID", xproto.AtomCardinal)
	if !ok {
		return "", errors.Errorf("window %#x has no _NET_WM_PID", uint64(window))
	}
	return d.proc.ExecutableName(pid)
}

// WindowRect returns window's rectangle in root coordinates.
func (d *Display) WindowRect(window overlay.Handle) (overlay.Rect, error) {
	id := xproto.Window(window)

	geometry, err := xproto.GetGeometry(d.conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return overlay.Rect{}, errors.Wrapf(err, "get geometry of window %#x", id)
	}
	origin, err := xproto.TranslateCoordinates(d.conn, id, d.root, 0, 0).Reply()
	if err != nil {
		return overlay.Rect{}, errors.Wrapf(err, "translate coordinates of window %#x", id)
	}

	left, top := int(origin.DstX), int(origin.DstY)
	return overlay.Rect{
		Left:   left,
		Top:    top,
		Right:  left + int(geometry.Width),
		Bottom: top + int(geometry.Height),
	}, nil
}

// Window returns the overlay surface for an existing window id.
func (d *Display) Window(id uint32) *Window {
	return &Window{conn: d.conn, id: xproto.Window(id)}
}
