// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/svcmap"
	"code.hybscloud.com/remoteactor/wire"
)

// connState is the Peer's lifecycle state, stored atomically so the reader,
// writer and caller-facing goroutines can all check it without a lock.
type connState int32

const (
	stateOpen connState = iota
	stateClosing
	stateClosed
)

// CloseConnection requests an orderly shutdown of a Peer, mirroring the
// control message of the same name: Remote records whether the shutdown was
// triggered by the far end of the connection (a clean EOF, a fatal read
// error) rather than the local owner, and Reason is carried into the
// Closed/ClosedByRemote event for observers.
type CloseConnection struct {
	Remote bool
	Reason string
}

type pendingCall struct {
	resultCh chan<- callResult
	timer    *time.Timer
}

type callResult struct {
	frame *wire.Frame
	err   error
}

// Peer is the per-connection actor: a reader goroutine decoding frames off
// r, a writer goroutine serializing frames onto w, a pending-call table
// correlating outbound calls with their responses, a registry of
// svcmap.ServiceMap instances consulted for inbound frames, a backpressure
// limiter bounding concurrent inbound calls, and an event bus for
// connection-lifecycle observers.
type Peer struct {
	id   uuid.UUID
	name string

	r io.Reader
	w io.Writer

	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	state atomic.Int32

	outbound    chan *wire.Frame
	closeSignal chan struct{}
	done        chan struct{}
	closeOnce   sync.Once

	mapsMu sync.RWMutex
	maps   []svcmap.ServiceMap

	pendingMu sync.Mutex
	pending   map[wire.ConnID]pendingCall

	bp *backpressure

	observers *observerHub

	selfMu   sync.Mutex
	selfAddr mailbox.Address[*wire.Frame, *wire.Frame]

	logger *zerolog.Logger
}

// New starts a Peer reading frames from r and writing them to w. name is an
// optional human-readable label carried into every structured error and
// event; an empty name leaves PeerName() reporting "not set".
func New(r io.Reader, w io.Writer, name string, opts ...Option) *Peer {
	o := resolveOptions(opts...)
	ctx, cancel := context.WithCancel(context.Background())

	p := &Peer{
		id:          uuid.New(),
		name:        name,
		r:           r,
		w:           w,
		opts:        o,
		ctx:         ctx,
		cancel:      cancel,
		outbound:    make(chan *wire.Frame, o.outboundQueue),
		closeSignal: make(chan struct{}),
		done:        make(chan struct{}),
		pending:     make(map[wire.ConnID]pendingCall),
		bp:          newBackpressure(o.backpressure),
		observers:   newObserverHub(),
		logger:      o.logger,
	}
	p.selfAddr = peerAddr{p: p}

	go p.writeLoop()
	go p.readLoop()

	p.observers.broadcast(Event{Kind: EventConnected, PeerID: p.id.String()})
	return p
}

// PeerID returns this peer's opaque, process-unique identifier.
func (p *Peer) PeerID() string { return p.id.String() }

// PeerName returns the human-readable name given at construction, if any.
func (p *Peer) PeerName() (string, bool) { return p.name, p.name != "" }

func (p *Peer) uint64ID() uint64 { return binary.LittleEndian.Uint64(p.id[:8]) }

// Addr returns a cloneable mailbox.Address handle over this Peer, suitable
// for registering as a RelayMap's downstream target. It returns nil once
// the Peer has closed, breaking the self-reference a dispatch future would
// otherwise use to enqueue its result.
func (p *Peer) Addr() mailbox.Address[*wire.Frame, *wire.Frame] {
	p.selfMu.Lock()
	defer p.selfMu.Unlock()
	return p.selfAddr
}

// RegisterServices adds sm to this Peer's dispatch registry. Inbound frames
// whose sid matches one of sm.Services() are routed to it; a sid already
// claimed by an earlier registration stays with that earlier map (lookup
// takes the first match in registration order).
func (p *Peer) RegisterServices(sm svcmap.ServiceMap) {
	p.mapsMu.Lock()
	p.maps = append(p.maps, sm)
	p.mapsMu.Unlock()
}

// Observe subscribes to this Peer's lifecycle events. bufSize bounds the
// subscriber's channel; a slow consumer has its oldest pending event
// dropped rather than stalling the Peer.
func (p *Peer) Observe(bufSize int) (*Observer, func()) {
	return p.observers.subscribe(bufSize)
}

// Done returns a channel closed once the Peer has transitioned to Closed:
// every pending call resolved and the Closed/ClosedByRemote event
// broadcast. It does not wait for the writer goroutine's final pass over
// frames still queued for output.
func (p *Peer) Done() <-chan struct{} { return p.done }

// Close requests an orderly shutdown: the reader and writer goroutines
// stop, every pending outbound call resolves with ErrorKindConnectionClosed,
// and a Closed (or ClosedByRemote, if cc.Remote) event is broadcast. Close
// is safe to call more than once; only the first call has effect.
func (p *Peer) Close(cc CloseConnection) {
	p.closeInternal(cc.Remote, cc.Reason)
}

func (p *Peer) closeInternal(remote bool, reason string) {
	if !p.state.CompareAndSwap(int32(stateOpen), int32(stateClosing)) {
		return
	}
	p.closeOnce.Do(func() { close(p.closeSignal) })
	p.cancel()

	if c, ok := p.r.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := p.w.(io.Closer); ok {
		if rc, ok := p.r.(io.Closer); !ok || rc != c {
			_ = c.Close()
		}
	}

	p.pendingMu.Lock()
	pend := p.pending
	p.pending = make(map[wire.ConnID]pendingCall)
	p.pendingMu.Unlock()
	for cid, pc := range pend {
		if pc.timer != nil {
			pc.timer.Stop()
		}
		pc.resultCh <- callResult{err: &Error{
			PeerID:      p.id.String(),
			PeerName:    p.name,
			CID:         cid,
			Kind:        ErrorKindConnectionClosed,
			Description: "connection closed",
		}}
	}

	p.mapsMu.Lock()
	p.maps = nil
	p.mapsMu.Unlock()

	p.selfMu.Lock()
	p.selfAddr = nil
	p.selfMu.Unlock()

	kind := EventClosed
	if remote {
		kind = EventClosedByRemote
	}
	p.observers.broadcast(Event{Kind: kind, PeerID: p.id.String(), Reason: reason})

	p.state.Store(int32(stateClosed))
	close(p.done)
	p.observers.closeAll()
}

func (p *Peer) readLoop() {
	for {
		frame, err := wire.Decode(p.r, p.opts.maxFrameSize)
		if err != nil {
			if err == io.EOF {
				p.closeInternal(true, "remote closed the stream")
				return
			}
			kind := ErrorKindConnectionClosed
			if err == wire.ErrMessageSizeExceeded {
				kind = ErrorKindMessageSizeExceeded
			}
			p.emitError(kind, wire.ServiceIDNull, wire.ConnIDNull, err.Error())
			p.closeInternal(true, err.Error())
			return
		}
		p.handleInbound(frame)
	}
}

func (p *Peer) handleInbound(frame *wire.Frame) {
	cid := frame.CID()
	sid := frame.SID()

	switch {
	case cid.IsNull():
		p.handleSend(frame)
	case sid.IsFull():
		p.handleResponse(frame)
	default:
		p.handleCall(frame)
	}
}

func (p *Peer) handleSend(frame *wire.Frame) {
	sid := frame.SID()
	sm, ok := p.lookupMap(sid)
	if !ok {
		p.emitError(ErrorKindUnknownService, sid, wire.ConnIDNull, "unknown service")
		return
	}

	fut, err := sm.SendService(p.ctx, frame, p.callContext())
	if err != nil {
		p.emitError(ErrorKindHandlerDead, sid, wire.ConnIDNull, err.Error())
		return
	}
	go func() {
		if err := <-fut; err != nil {
			werr := errors.Wrap(err, "dispatch send crossed back to peer with an error")
			p.emitError(ErrorKindHandlerDead, sid, wire.ConnIDNull, werr.Error())
		}
	}()
}

func (p *Peer) handleCall(frame *wire.Frame) {
	cid := frame.CID()
	sid := frame.SID()

	sm, ok := p.lookupMap(sid)
	if !ok {
		resp, err := wire.BuildUnknownServiceFrame(cid, sid)
		if err == nil {
			p.enqueueOutbound(resp)
		}
		p.emitError(ErrorKindUnknownService, sid, cid, "unknown service")
		return
	}

	// Relayed calls bypass the limiter: the downstream peer applies its own.
	_, relayed := sm.(*svcmap.RelayMap)
	release := func() {
		if !relayed {
			p.bp.release()
		}
	}
	if !relayed {
		if err := p.bp.acquire(p.ctx); err != nil {
			return
		}
	}

	fut, err := sm.CallService(p.ctx, frame, p.callContext())
	if err != nil {
		release()
		p.emitError(ErrorKindNoHandler, sid, cid, err.Error())
		return
	}

	go func() {
		defer release()
		res := <-fut
		if res.Err != nil {
			werr := errors.Wrapf(res.Err, "dispatch call for sid %s crossed back to peer with an error", sid)
			p.emitError(ErrorKindNoHandler, sid, cid, werr.Error())
			return
		}
		switch res.Response.Kind {
		case svcmap.ResponseNothing:
		case svcmap.ResponseCallResponse:
			p.enqueueOutbound(res.Response.Frame)
		case svcmap.ResponseWireFormat:
			p.enqueueOutbound(res.Response.Frame)
			p.emitError(ErrorKindDeserialize, sid, cid, "dispatch produced a protocol error response")
		}
	}()
}

func (p *Peer) handleResponse(frame *wire.Frame) {
	cid := frame.CID()

	p.pendingMu.Lock()
	pc, ok := p.pending[cid]
	if ok {
		delete(p.pending, cid)
	}
	p.pendingMu.Unlock()

	if !ok {
		if p.logger != nil {
			p.logger.Debug().Str("peer_id", p.id.String()).Str("cid", cid.String()).
				Msg("response for unknown or already-resolved call id")
		}
		p.observers.broadcast(Event{Kind: EventUnmatchedResponse, PeerID: p.id.String()})
		return
	}
	if pc.timer != nil {
		pc.timer.Stop()
	}
	pc.resultCh <- callResult{frame: frame}
}

func (p *Peer) lookupMap(sid wire.ServiceID) (svcmap.ServiceMap, bool) {
	p.mapsMu.RLock()
	defer p.mapsMu.RUnlock()
	for _, sm := range p.maps {
		for _, s := range sm.Services() {
			if s == sid {
				return sm, true
			}
		}
	}
	return nil, false
}

func (p *Peer) callContext() svcmap.CallContext {
	return svcmap.CallContext{PeerID: p.id.String(), PeerName: p.name}
}

// enqueueOutbound routes f through the Peer's own self-address so a
// dispatch future completing after Close simply finds selfAddr nil and
// drops its result, instead of writing to a torn-down outbound channel.
func (p *Peer) enqueueOutbound(f *wire.Frame) {
	p.selfMu.Lock()
	self := p.selfAddr
	p.selfMu.Unlock()
	if self == nil {
		return
	}
	_ = self.Send(p.ctx, f)
}

func (p *Peer) writeLoop() {
	for {
		select {
		case frame := <-p.outbound:
			p.writeFrame(frame)
		case <-p.closeSignal:
			p.drainOutbound()
			return
		}
	}
}

func (p *Peer) writeFrame(frame *wire.Frame) {
	if err := wire.Encode(p.w, frame); err != nil {
		p.emitError(ErrorKindConnectionClosed, frame.SID(), frame.CID(), err.Error())
		p.closeInternal(false, "write error: "+err.Error())
	}
}

func (p *Peer) drainOutbound() {
	for {
		select {
		case frame := <-p.outbound:
			if err := wire.Encode(p.w, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// submitSend enqueues a fire-and-forget frame for writing. It is the
// primitive both RemoteAddress.Send and a relay's frameAddr use.
func (p *Peer) submitSend(ctx context.Context, frame *wire.Frame) error {
	if connState(p.state.Load()) != stateOpen {
		return p.closedError(frame.SID(), frame.CID())
	}
	select {
	case p.outbound <- frame:
		return nil
	case <-p.closeSignal:
		return p.closedError(frame.SID(), frame.CID())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submitCall registers frame's cid in the pending table, enqueues it for
// writing, and blocks until a correlated response arrives, the peer
// closes, or ctx is cancelled. It is the primitive both RemoteAddress.Call
// and a relay's frameAddr use — the relay case simply forwards frame.CID()
// through untouched, preserving end-to-end call correlation.
func (p *Peer) submitCall(ctx context.Context, frame *wire.Frame) (*wire.Frame, error) {
	if connState(p.state.Load()) != stateOpen {
		return nil, p.closedError(frame.SID(), frame.CID())
	}

	cid := frame.CID()
	resultCh := make(chan callResult, 1)
	pc := pendingCall{resultCh: resultCh}

	if p.opts.callTimeout > 0 {
		pc.timer = time.AfterFunc(p.opts.callTimeout, func() { p.timeoutCall(cid, frame.SID()) })
	}

	p.pendingMu.Lock()
	p.pending[cid] = pc
	p.pendingMu.Unlock()

	select {
	case p.outbound <- frame:
	case <-p.closeSignal:
		p.removePending(cid, pc)
		return nil, p.closedError(frame.SID(), cid)
	case <-ctx.Done():
		p.removePending(cid, pc)
		return nil, ctx.Err()
	}

	select {
	case res := <-resultCh:
		return res.frame, res.err
	case <-ctx.Done():
		p.removePending(cid, pc)
		return nil, ctx.Err()
	}
}

func (p *Peer) timeoutCall(cid wire.ConnID, sid wire.ServiceID) {
	p.pendingMu.Lock()
	pc, ok := p.pending[cid]
	if ok {
		delete(p.pending, cid)
	}
	p.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case pc.resultCh <- callResult{err: &Error{
		PeerID:      p.id.String(),
		PeerName:    p.name,
		SID:         sid,
		CID:         cid,
		Kind:        ErrorKindTimeout,
		Description: "call timed out waiting for a response",
	}}:
	default:
	}
}

func (p *Peer) removePending(cid wire.ConnID, pc pendingCall) {
	p.pendingMu.Lock()
	delete(p.pending, cid)
	p.pendingMu.Unlock()
	if pc.timer != nil {
		pc.timer.Stop()
	}
}

func (p *Peer) closedError(sid wire.ServiceID, cid wire.ConnID) error {
	return &Error{
		PeerID:      p.id.String(),
		PeerName:    p.name,
		SID:         sid,
		CID:         cid,
		Kind:        ErrorKindConnectionClosed,
		Description: "peer is closed",
	}
}

func (p *Peer) emitError(kind ErrorKind, sid wire.ServiceID, cid wire.ConnID, desc string) {
	err := &Error{PeerID: p.id.String(), PeerName: p.name, SID: sid, CID: cid, Kind: kind, Description: desc}
	if p.logger != nil {
		p.logger.Warn().
			Str("peer_id", p.id.String()).
			Str("sid", sid.String()).
			Str("cid", cid.String()).
			Str("kind", kind.String()).
			Msg(desc)
	}
	p.observers.broadcast(Event{Kind: EventError, PeerID: p.id.String(), Err: err})
}

// emitRemoteError notifies observers of an error the far side of this
// connection reported in a response frame, as opposed to one this Peer
// produced locally.
func (p *Peer) emitRemoteError(err *Error) {
	if p.logger != nil {
		p.logger.Warn().
			Str("peer_id", p.id.String()).
			Str("sid", err.SID.String()).
			Str("cid", err.CID.String()).
			Str("remote_kind", err.RemoteKind.String()).
			Msg(err.Description)
	}
	p.observers.broadcast(Event{Kind: EventRemoteError, PeerID: p.id.String(), Err: err})
}

// peerAddr adapts a Peer to mailbox.Address[*wire.Frame, *wire.Frame]: the
// generic "downstream peer connection" shape svcmap.RelayMap forwards
// frames to, and the shape Peer.selfAddr uses to enqueue its own dispatch
// results.
type peerAddr struct {
	p *Peer
}

func (a peerAddr) Send(ctx context.Context, frame *wire.Frame) error {
	return a.p.submitSend(ctx, frame)
}

func (a peerAddr) Call(ctx context.Context, frame *wire.Frame) (*wire.Frame, error) {
	return a.p.submitCall(ctx, frame)
}

func (a peerAddr) ID() uint64 { return a.p.uint64ID() }

func (a peerAddr) Name() (string, bool) { return a.p.PeerName() }

func (a peerAddr) Clone() mailbox.Address[*wire.Frame, *wire.Frame] { return a }
