package services

import "sync"

// RecordHandler handles a fire-and-forget Record message.
type RecordHandler func(client *Protocol, payload []byte)

// RequestHandler handles a Request message, given a token the handler
// uses to send exactly one Response.
type RequestHandler func(token *RequestToken, payload []byte)

// SlotRegistry maps message type tags to handlers, for each of the two
// message kinds that trigger dispatch (Record, Request). Registries are
// append-only after the containing server starts serving, per spec
// §4.9's "slots table" - Register calls after Serving has no documented
// ill effect here since the map is simply mutex-guarded, but callers
// should treat it as append-only to match the source's contract.
type SlotRegistry struct {
	mu       sync.RWMutex
	records  map[string]RecordHandler
	requests map[string]RequestHandler
}

func NewSlotRegistry() *SlotRegistry {
	return &SlotRegistry{
		records:  make(map[string]RecordHandler),
		requests: make(map[string]RequestHandler),
	}
}

func (s *SlotRegistry) RegisterRecordSlot(tag string, h RecordHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tag] = h
}

func (s *SlotRegistry) RegisterRequestSlot(tag string, h RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[tag] = h
}

func (s *SlotRegistry) record(tag string) (RecordHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.records[tag]
	return h, ok
}

func (s *SlotRegistry) request(tag string) (RequestHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.requests[tag]
	return h, ok
}
