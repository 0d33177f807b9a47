// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package svcmap

import (
	"context"
	"strconv"
	"sync"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/wire"
)

// frameAddr is the mailbox address type a RelayMap forwards frames to: a
// downstream peer connection, addressed generically so RelayMap does not
// depend on the peer package.
type frameAddr = mailbox.Address[*wire.Frame, *wire.Frame]

// Selector resolves a service id to a downstream frameAddr on every
// relayed call, e.g. round-robin across a pool. It MUST be tolerated to
// return a different address on consecutive calls for the same sid.
type Selector func(wire.ServiceID) (frameAddr, bool)

// ServiceHandler resolves a service id to a downstream frameAddr, either a
// fixed route, a dynamic Selector closure, or a catch-all fallback. It is
// mutex-guarded so routes can be added or replaced while a RelayMap is
// concurrently dispatching frames; critical sections are a single map
// lookup.
type ServiceHandler struct {
	mu       sync.RWMutex
	routes   map[wire.ServiceID]frameAddr
	selector Selector
	fallback frameAddr
	extra    map[wire.ServiceID]struct{}
}

// NewServiceHandler builds a handler with no routes, selector, or fallback.
func NewServiceHandler() *ServiceHandler {
	return &ServiceHandler{routes: make(map[wire.ServiceID]frameAddr)}
}

// Route directs frames addressed to sid to a fixed addr.
func (h *ServiceHandler) Route(sid wire.ServiceID, addr frameAddr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[sid] = addr
}

// SetSelector installs fn, consulted for any sid with no fixed Route, ahead
// of the fallback. Use this for per-call load spreading across multiple
// downstream peers; fn is called fresh on every relayed frame, so it may
// legitimately return a different address for the same sid each time.
func (h *ServiceHandler) SetSelector(fn Selector) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selector = fn
}

// Advertise adds sids to Services() without binding them to a fixed Route,
// for use alongside a Selector that resolves them dynamically.
func (h *ServiceHandler) Advertise(sids ...wire.ServiceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.extra == nil {
		h.extra = make(map[wire.ServiceID]struct{}, len(sids))
	}
	for _, sid := range sids {
		h.extra[sid] = struct{}{}
	}
}

// SetFallback directs any frame with no explicit route or selector match to
// addr. A RelayMap with a fallback relays everything unconditionally,
// mirroring a catch-all downstream hop.
func (h *ServiceHandler) SetFallback(addr frameAddr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fallback = addr
}

func (h *ServiceHandler) resolve(sid wire.ServiceID) (frameAddr, bool) {
	h.mu.RLock()
	addr, ok := h.routes[sid]
	selector := h.selector
	fallback := h.fallback
	h.mu.RUnlock()

	if ok {
		return addr, true
	}
	if selector != nil {
		if addr, ok := selector(sid); ok {
			return addr, true
		}
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func (h *ServiceHandler) sids() []wire.ServiceID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]wire.ServiceID, 0, len(h.routes)+len(h.extra))
	for sid := range h.routes {
		out = append(out, sid)
	}
	for sid := range h.extra {
		out = append(out, sid)
	}
	return out
}

// RelayMap forwards frames to a downstream peer's mailbox without
// deserializing them: the ServiceMap analogue of wire.Forward, expressed at
// the dispatch layer instead of the raw-stream layer. It is how a process
// acting purely as a relay hop participates in a Peer's dispatch without
// understanding the application payload format.
type RelayMap struct {
	handler *ServiceHandler
}

// NewRelayMap wraps handler as a ServiceMap.
func NewRelayMap(handler *ServiceHandler) *RelayMap {
	return &RelayMap{handler: handler}
}

func (rm *RelayMap) SendService(ctx context.Context, frame *wire.Frame, _ CallContext) (Future, error) {
	addr, ok := rm.handler.resolve(frame.SID())
	if !ok {
		return nil, ErrUnknownService
	}
	ch := make(chan error, 1)
	go func() { ch <- addr.Send(ctx, frame) }()
	return ch, nil
}

func (rm *RelayMap) CallService(ctx context.Context, frame *wire.Frame, _ CallContext) (ResponseFuture, error) {
	addr, ok := rm.handler.resolve(frame.SID())
	if !ok {
		return nil, ErrUnknownService
	}
	ch := make(chan CallResult, 1)
	go func() {
		resp, err := addr.Call(ctx, frame)
		if err != nil {
			ch <- CallResult{Response: relayGoneResponse(frame.CID(), addr, err.Error())}
			return
		}
		ch <- CallResult{Response: Response{Kind: ResponseCallResponse, Frame: resp}}
	}()
	return ch, nil
}

// relayGoneResponse builds a RelayGone error response carrying the identity
// of the downstream addr that failed, so a caller several hops upstream can
// still tell which relay went gone.
func relayGoneResponse(cid wire.ConnID, addr frameAddr, description string) Response {
	relayID := strconv.FormatUint(addr.ID(), 10)
	relayName, _ := addr.Name()
	f, err := wire.BuildRelayGoneFrame(cid, relayID, relayName, description)
	if err != nil {
		panic("svcmap: building relay-gone frame: " + err.Error())
	}
	return Response{Kind: ResponseWireFormat, Frame: f}
}

func (rm *RelayMap) Services() []wire.ServiceID {
	return rm.handler.sids()
}
