package gifenc

import (
	"bytes"
	"encoding/binary"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) byte(b byte)     { w.buf.WriteByte(b) }
func (w *writer) bytes(p []byte)  { w.buf.Write(p) }
func (w *writer) uint16(v uint16) { w.buf.Write(binary.LittleEndian.AppendUint16(nil, v)) }
