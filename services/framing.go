package services

import (
	"encoding/binary"

	"github.com/beamtrade/beam/cmn/cos"
)

const frameHeaderSize = 4

// frameAccumulator turns a byte stream into length-prefixed frames: each
// frame is a 4-byte big-endian length followed by that many payload
// bytes. Grounded on httpparse's buffer-discipline idiom (cos.Buffer plus
// ConsumeFront), specialized from HTTP's line/header grammar down to a
// single binary length field since the service protocol has no textual
// framing to parse.
type frameAccumulator struct {
	buf *cos.Buffer
}

func newFrameAccumulator() *frameAccumulator {
	return &frameAccumulator{buf: cos.NewBuffer(4096)}
}

func (f *frameAccumulator) Feed(data []byte) { f.buf.Append(data) }

// Next pops the oldest complete frame, if one is buffered.
func (f *frameAccumulator) Next() ([]byte, bool) {
	if f.buf.Size() < frameHeaderSize {
		return nil, false
	}
	data := f.buf.Data()
	n := int(binary.BigEndian.Uint32(data[:frameHeaderSize]))
	if f.buf.Size() < frameHeaderSize+n {
		return nil, false
	}
	frame := make([]byte, n)
	copy(frame, data[frameHeaderSize:frameHeaderSize+n])
	f.buf.ConsumeFront(frameHeaderSize + n)
	return frame, true
}

func encodeFrame(payload []byte) []byte {
	out := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[frameHeaderSize:], payload)
	return out
}
