package httpparse

import (
	"strconv"
	"strings"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/httpmsg"
)

// HttpRequestParser is an incremental, reusable, non-thread-safe parser
// for a pipelined sequence of HTTP requests on one connection.
type HttpRequestParser struct {
	buf   *cos.Buffer
	st    state
	done  []*httpmsg.HttpRequest
	inErr bool

	version       httpmsg.Version
	method        httpmsg.Method
	path          string
	query         string
	headers       []httpmsg.Header
	cookies       []httpmsg.Cookie
	special       httpmsg.SpecialHeaders
	contentLenSet bool
	chunked       bool
	body          []byte
	chunkSize     int
}

func NewHttpRequestParser() *HttpRequestParser {
	return &HttpRequestParser{buf: cos.NewBuffer(4096)}
}

// Feed appends data to the internal buffer and drains as many complete
// tokens as are available.
func (p *HttpRequestParser) Feed(data []byte) {
	p.buf.Append(data)
	p.drain()
}

func (p *HttpRequestParser) resetMessage() {
	p.version = httpmsg.Version{}
	p.method = httpmsg.UnknownMethod
	p.path, p.query = "", ""
	p.headers = nil
	p.cookies = nil
	p.special = httpmsg.SpecialHeaders{}
	p.contentLenSet = false
	p.chunked = false
	p.body = nil
	p.chunkSize = 0
}

func (p *HttpRequestParser) fail(reason string) {
	p.st = stateError
	p.inErr = true
	_ = reason
}

func (p *HttpRequestParser) drain() {
	for {
		switch p.st {
		case stateLine:
			idx := p.buf.IndexCRLF()
			if idx < 0 {
				return
			}
			line := string(p.buf.Data()[:idx])
			p.buf.ConsumeFront(idx + 2)
			if !p.parseRequestLine(line) {
				p.fail("bad request line")
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
			if p.buf.Size() < p.special.ContentLength {
				return
			}
			p.body = append(p.body, p.buf.Data()[:p.special.ContentLength]...)
			p.buf.ConsumeFront(p.special.ContentLength)
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

func (p *HttpRequestParser) parseRequestLine(line string) bool {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return false
	}
	method, ok := httpmsg.ParseMethod(parts[0])
	if !ok {
		return false
	}
	version, ok := httpmsg.ParseVersion(parts[2])
	if !ok {
		return false
	}
	target := parts[1]
	path, query := target, ""
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		path, query = target[:idx], target[idx+1:]
	}

	p.resetMessage()
	p.method = method
	p.version = version
	p.path, p.query = path, query
	p.st = stateHeaders
	return true
}

func (p *HttpRequestParser) consumeHeaderLine(line string) bool {
	name, value, ok := parseHeaderLine(line)
	if !ok {
		return false
	}
	switch {
	case strings.EqualFold(name, "Host"):
		p.special.Host = value
	case strings.EqualFold(name, "Content-Length"):
		if p.contentLenSet {
			return true // ignore subsequent Content-Length headers
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return false
		}
		p.special.ContentLength = n
		p.contentLenSet = true
	case strings.EqualFold(name, "Transfer-Encoding"):
		if strings.EqualFold(strings.TrimSpace(value), "chunked") {
			p.chunked = true
		}
	case strings.EqualFold(name, "Connection"):
		p.special.Connection = httpmsg.ParseConnectionValue(value)
	case strings.EqualFold(name, "Cookie"):
		p.cookies = append(p.cookies, httpmsg.ParseRequestCookies(value)...)
	default:
		p.headers = append(p.headers, httpmsg.Header{Name: name, Value: value})
	}
	return true
}

func (p *HttpRequestParser) endHeaders() {
	if p.chunked {
		p.st = stateChunkedSize
		return
	}
	if p.special.ContentLength == 0 {
		p.finalize()
		return
	}
	p.st = stateBody
}

func (p *HttpRequestParser) finalize() {
	req := httpmsg.NewParsedRequest(p.version, p.method, p.path, p.query,
		p.headers, p.special, p.cookies, p.body)
	p.done = append(p.done, req)
	p.st = stateLine
}

// GetNext pops the oldest completed request, or returns (nil, nil) if
// none is ready yet. If the parser is in ERROR state and no completed
// request remains buffered, it returns InvalidHTTPRequestError.
func (p *HttpRequestParser) GetNext() (*httpmsg.HttpRequest, error) {
	if len(p.done) > 0 {
		req := p.done[0]
		p.done = p.done[1:]
		return req, nil
	}
	if p.inErr {
		return nil, &cos.InvalidHTTPRequestError{Reason: "parser in error state"}
	}
	return nil, nil
}
