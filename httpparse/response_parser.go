package httpparse

import (
	"strconv"
	"strings"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/httpmsg"
)

// HttpResponseParser is the response-side counterpart of
// HttpRequestParser: incremental, reusable across pipelined responses,
// not thread-safe.
type HttpResponseParser struct {
	buf   *cos.Buffer
	st    state
	done  []*httpmsg.HttpResponse
	inErr bool

	version       httpmsg.Version
	status        httpmsg.StatusCode
	headers       []httpmsg.Header
	cookies       []httpmsg.Cookie
	contentLength int
	contentLenSet bool
	chunked       bool
	body          []byte
	chunkSize     int
}

func NewHttpResponseParser() *HttpResponseParser {
	return &HttpResponseParser{buf: cos.NewBuffer(4096)}
}

func (p *HttpResponseParser) Feed(data []byte) {
	p.buf.Append(data)
	p.drain()
}

func (p *HttpResponseParser) resetMessage() {
	p.version = httpmsg.Version{}
	p.status = 0
	p.headers = nil
	p.cookies = nil
	p.contentLength = 0
	p.contentLenSet = false
	p.chunked = false
	p.body = nil
	p.chunkSize = 0
}

func (p *HttpResponseParser) fail(reason string) {
	p.st = stateError
	p.inErr = true
	_ = reason
}

func (p *HttpResponseParser) drain() {
	for {
		switch p.st {
		case stateLine:
			idx := p.buf.IndexCRLF()
			if idx < 0 {
				return
			}
			line := string(p.buf.Data()[:idx])
			p.buf.ConsumeFront(idx + 2)
			if !p.parseStatusLine(line) {
				p.fail("bad status line")
				return
			}
		case stateHeaders:
			idx := p.buf.IndexCRLF()
			if idx < 0 {
				return
			}
			line := string(p.buf.Data()[:idx])
			p.buf.ConsumeFront(idx + 2)
			if line == "" {
				p.endHeaders()
				continue
			}
			if !p.consumeHeaderLine(line) {
				p.fail("bad header line")
				return
			}
		case stateBody:
			if p.buf.Size() < p.contentLength {
				return
			}
			p.body = append(p.body, p.buf.Data()[:p.contentLength]...)
			p.buf.ConsumeFront(p.contentLength)
			p.finalize()
		case stateChunkedSize:
			idx := p.buf.IndexCRLF()
			if idx < 0 {
				return
			}
			line := string(p.buf.Data()[:idx])
			p.buf.ConsumeFront(idx + 2)
			size, ok := parseChunkSizeLine(line)
			if !ok {
				p.fail("bad chunk size")
				return
			}
			if size == 0 {
				p.st = stateChunkedEnd
			} else {
				p.chunkSize = size
				p.st = stateChunkedData
			}
		case stateChunkedData:
			need := p.chunkSize + 2
			if p.buf.Size() < need {
				return
			}
			data := p.buf.Data()
			if data[p.chunkSize] != '\r' || data[p.chunkSize+1] != '\n' {
				p.fail("bad chunk terminator")
				return
			}
			p.body = append(p.body, data[:p.chunkSize]...)
			p.buf.ConsumeFront(need)
			p.st = stateChunkedSize
		case stateChunkedEnd:
			ok, needMore := expectCRLFAt0(p.buf)
			if needMore {
				return
			}
			if !ok {
				p.fail("missing trailing CRLF")
				return
			}
			p.finalize()
		case stateError:
			return
		}
	}
}

func (p *HttpResponseParser) parseStatusLine(line string) bool {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return false
	}
	version, ok := httpmsg.ParseVersion(parts[0])
	if !ok {
		return false
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	p.resetMessage()
	p.version = version
	p.status = httpmsg.StatusCode(code)
	p.st = stateHeaders
	return true
}

func (p *HttpResponseParser) consumeHeaderLine(line string) bool {
	name, value, ok := parseHeaderLine(line)
	if !ok {
		return false
	}
	switch {
	case strings.EqualFold(name, "Content-Length"):
		if p.contentLenSet {
			return true
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return false
		}
		p.contentLength = n
		p.contentLenSet = true
	case strings.EqualFold(name, "Transfer-Encoding"):
		if strings.EqualFold(strings.TrimSpace(value), "chunked") {
			p.chunked = true
		}
	case strings.EqualFold(name, "Set-Cookie"):
		p.cookies = append(p.cookies, httpmsg.ParseSetCookie(value))
	default:
		p.headers = append(p.headers, httpmsg.Header{Name: name, Value: value})
	}
	return true
}

func (p *HttpResponseParser) endHeaders() {
	if p.chunked {
		p.st = stateChunkedSize
		return
	}
	if p.contentLenSet {
		if p.contentLength == 0 {
			p.finalize()
			return
		}
		p.st = stateBody
		return
	}
	// Neither Transfer-Encoding nor Content-Length: finalize immediately
	// with an empty body, per spec §4.6.
	p.finalize()
}

func (p *HttpResponseParser) finalize() {
	resp := httpmsg.NewParsedResponse(p.version, p.status, p.headers, p.cookies, p.body)
	p.done = append(p.done, resp)
	p.st = stateLine
}

// GetNext pops the oldest completed response, or (nil, nil) if none is
// ready. An ERROR state with nothing buffered returns
// InvalidHTTPResponseError.
func (p *HttpResponseParser) GetNext() (*httpmsg.HttpResponse, error) {
	if len(p.done) > 0 {
		resp := p.done[0]
		p.done = p.done[1:]
		return resp, nil
	}
	if p.inErr {
		return nil, &cos.InvalidHTTPResponseError{Reason: "parser in error state"}
	}
	return nil, nil
}
