package x11

import (
	"threepole/lib/services/overlay"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var _ overlay.Surface = (*Window)(nil)

// Window is an overlay surface backed by an existing X11 window.
type Window struct {
	conn *xgb.Conn
	id   xproto.Window
}

func (w *Window) Handle() overlay.Handle {
	return overlay.Handle(w.id)
}

func (w *Window) SetGeometry(geometry overlay.Geometry) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{
		uint32(int32(geometry.X)),
		uint32(int32(geometry.Y)),
		uint32(max(geometry.Width, 1)),
		uint32(max(geometry.Height, 1)),
	}
	if err := xproto.ConfigureWindowChecked(w.conn, w.id, mask, values).Check(); err != nil {
		return errors.Wrapf(err, "configure window %#x", w.id)
	}
	return nil
}

func (w *Window) Show() error {
	if err := xproto.MapWindowChecked(w.conn, w.id).Check(); err != nil {
		return errors.Wrapf(err, "map window %#x", w.id)
	}
	return nil
}

func (w *Window) Hide() error {
	if err := xproto.UnmapWindowChecked(w.conn, w.id).Check(); err != nil {
		return errors.Wrapf(err, "unmap window %#x", w.id)
	}
	return nil
}
