// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import "sync"

// EventKind tags an Event.
type EventKind uint8

const (
	EventConnected EventKind = iota
	EventClosed
	EventClosedByRemote
	EventError
	EventRemoteError
	// EventUnmatchedResponse fires when a response frame's cid does not
	// match any pending call: logged and dropped, never fatal.
	EventUnmatchedResponse
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "Connected"
	case EventClosed:
		return "Closed"
	case EventClosedByRemote:
		return "ClosedByRemote"
	case EventError:
		return "Error"
	case EventRemoteError:
		return "RemoteError"
	case EventUnmatchedResponse:
		return "UnmatchedResponse"
	default:
		return "Unknown"
	}
}

// Event is one lifecycle notification broadcast to a Peer's observers.
type Event struct {
	Kind   EventKind
	PeerID string
	Err    *Error // set for EventError / EventRemoteError
	Reason string // set for EventClosed / EventClosedByRemote
}

// Observer is a subscription handle returned by Peer.Observe. Events is a
// buffered channel; a slow subscriber that fills its buffer has the oldest
// pending event dropped rather than stalling the Peer's broadcast loop.
type Observer struct {
	Events <-chan Event
}

// observerHub is the broadcaster a Peer owns: a small multi-consumer
// fan-out registry over typed lifecycle events.
type observerHub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newObserverHub() *observerHub {
	return &observerHub{subs: make(map[int]chan Event)}
}

// subscribe registers a new observer with the given buffer size and returns
// it alongside a cancel function that unregisters it.
func (h *observerHub) subscribe(bufSize int) (*Observer, func()) {
	if bufSize <= 0 {
		bufSize = 1
	}
	ch := make(chan Event, bufSize)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return &Observer{Events: ch}, cancel
}

// broadcast delivers ev to every current subscriber without blocking: a
// full subscriber buffer has its oldest event dropped to make room, so one
// wedged consumer never backs up the Peer's reader or writer goroutine.
func (h *observerHub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// closeAll closes every subscriber channel; used when the Peer itself shuts
// down so observers see channel closure rather than silence.
func (h *observerHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
