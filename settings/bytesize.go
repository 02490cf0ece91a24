package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteSize is a size in bytes that reads and writes units such as "2 MB".
type ByteSize int

const (
	KB  ByteSize = humanize.KByte
	MB  ByteSize = humanize.MByte
	KiB ByteSize = humanize.KiByte
	MiB ByteSize = humanize.MiByte
)

// ParseByteSize accepts SI and IEC units ("2MB", "1.5 mb", "64KiB") and
// plain byte counts. An empty string is 0.
func ParseByteSize(s string) (ByteSize, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, nil
	}
	v, err := humanize.ParseBytes(text)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(v), nil
}

// String is the humanized size when that reads back exactly, otherwise
// the plain byte count.
func (b ByteSize) String() string {
	if b < 0 {
		return strconv.Itoa(int(b))
	}
	text := humanize.Bytes(uint64(b))
	if v, err := humanize.ParseBytes(text); err == nil && v == uint64(b) {
		return text
	}
	return strconv.Itoa(int(b))
}

func (b ByteSize) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Set and Type let ByteSize be used as a pflag value.
func (b *ByteSize) Set(s string) error { return b.UnmarshalText([]byte(s)) }
func (b *ByteSize) Type() string       { return "bytes" }
