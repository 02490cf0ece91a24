package gifenc

// GIF89a block introducers and labels.
const (
	blockExtension = 0x21
	blockImage     = 0x2C
	blockTrailer   = 0x3B

	labelGraphicControl = 0xF9
	labelApplication    = 0xFF

	graphicControlSize = 0x04
	applicationSize    = 0x0B

	// Logical screen descriptor packed field.
	flagGlobalColorTable = 0x80
	colorResolution8Bit  = 0x70

	disposalNone = 0x00

	maxSubBlock = 255
)

var (
	signature      = []byte("GIF89a")
	netscapeAppID  = []byte("NETSCAPE2.0")
	netscapeSubLen = byte(0x03)
	netscapeLoopID = byte(0x01)
)

// blockWriter splits LZW output into data sub-blocks of at most 255 bytes,
// each preceded by its length.
type blockWriter struct {
	out *writer
	buf [maxSubBlock]byte
	n   int
}

func (b *blockWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		c := copy(b.buf[b.n:], p)
		b.n += c
		p = p[c:]
		written += c
		if b.n == maxSubBlock {
			b.flush()
		}
	}
	return written, nil
}

func (b *blockWriter) flush() {
	if b.n == 0 {
		return
	}
	b.out.byte(byte(b.n))
	b.out.bytes(b.buf[:b.n])
	b.n = 0
}

// close flushes the pending sub-block and writes the block terminator.
func (b *blockWriter) close() {
	b.flush()
	b.out.byte(0x00)
}
