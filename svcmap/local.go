// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package svcmap

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"code.hybscloud.com/remoteactor/mailbox"
	"code.hybscloud.com/remoteactor/wire"
)

// registration is the type-erased shape a LocalServiceMap stores per
// service id. Register[M, R] closes over the concrete message/response
// types so the map itself never needs generic parameters.
type registration struct {
	sid      wire.ServiceID
	dispatch func(ctx context.Context, cc CallContext, cid wire.ConnID, payload []byte, isCall bool) Response
}

// LocalServiceMap dispatches incoming frames to locally registered
// mailbox.Address handlers, deserializing/serializing payloads through a
// Codec. It is the terminal hop for a service: the message is fully
// decoded here, not forwarded further.
type LocalServiceMap struct {
	mu    sync.RWMutex
	regs  map[wire.ServiceID]*registration
	codec Codec
}

// NewLocalServiceMap builds an empty map using codec for all registrations
// made through it. If codec is nil, CBORCodec{} is used.
func NewLocalServiceMap(codec Codec) *LocalServiceMap {
	if codec == nil {
		codec = CBORCodec{}
	}
	return &LocalServiceMap{regs: make(map[wire.ServiceID]*registration), codec: codec}
}

// Register associates the service identified by namespace and M's type
// name with addr. Incoming Send/Call frames for that service id are
// deserialized into M, delivered to addr, and (for calls) the R response
// is serialized back.
//
// Register is a package-level function, not a method, because Go methods
// cannot carry their own type parameters independent of the receiver's.
func Register[M any, R any](sm *LocalServiceMap, namespace string, addr mailbox.Address[M, R]) wire.ServiceID {
	var zero M
	typeName := reflect.TypeOf(zero)
	var typeNameBytes []byte
	if typeName != nil {
		typeNameBytes = []byte(typeName.String())
	}
	sid := wire.ServiceIDFromSeed([]byte(namespace), typeNameBytes)

	reg := &registration{
		sid: sid,
		dispatch: func(ctx context.Context, cc CallContext, cid wire.ConnID, payload []byte, isCall bool) Response {
			var msg M
			if len(payload) > 0 {
				if err := sm.codec.Unmarshal(payload, &msg); err != nil {
					return errorResponse(cid, wire.ErrorKindDeserialize, err.Error())
				}
			}

			if !isCall {
				if err := addr.Send(ctx, msg); err != nil {
					return errorResponse(cid, wire.ErrorKindHandlerDead, err.Error())
				}
				return Response{Kind: ResponseNothing}
			}

			resp, err := addr.Call(ctx, msg)
			if err != nil {
				return errorResponse(cid, wire.ErrorKindHandlerDead, err.Error())
			}
			out, err := sm.codec.Marshal(resp)
			if err != nil {
				return errorResponse(cid, wire.ErrorKindSerialize, err.Error())
			}
			f := wire.NewFrame(len(out))
			f.SetSID(wire.ServiceIDFull).SetCID(cid).AppendPayload(out)
			return Response{Kind: ResponseCallResponse, Frame: f}
		},
	}

	sm.mu.Lock()
	sm.regs[sid] = reg
	sm.mu.Unlock()
	return sid
}

func errorResponse(cid wire.ConnID, kind wire.ErrorKind, description string) Response {
	f, err := wire.BuildErrorFrame(cid, kind, description)
	if err != nil {
		// BuildErrorFrame only fails if json.Marshal of the fixed
		// errorPayload shape fails, which does not happen in practice.
		panic(fmt.Sprintf("svcmap: building error frame: %v", err))
	}
	return Response{Kind: ResponseWireFormat, Frame: f}
}

func (sm *LocalServiceMap) lookup(sid wire.ServiceID) (*registration, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	reg, ok := sm.regs[sid]
	return reg, ok
}

func (sm *LocalServiceMap) SendService(ctx context.Context, frame *wire.Frame, cc CallContext) (Future, error) {
	reg, ok := sm.lookup(frame.SID())
	if !ok {
		return nil, ErrUnknownService
	}
	ch := make(chan error, 1)
	go func() {
		resp := reg.dispatch(ctx, cc, frame.CID(), frame.Payload(), false)
		if resp.Kind == ResponseWireFormat {
			if ef, err := wire.ParseErrorFrame(resp.Frame); err == nil {
				ch <- fmt.Errorf("svcmap: %s: %s", ef.Kind, ef.Description)
				return
			}
		}
		ch <- nil
	}()
	return ch, nil
}

func (sm *LocalServiceMap) CallService(ctx context.Context, frame *wire.Frame, cc CallContext) (ResponseFuture, error) {
	reg, ok := sm.lookup(frame.SID())
	if !ok {
		return nil, ErrUnknownService
	}
	ch := make(chan CallResult, 1)
	go func() {
		resp := reg.dispatch(ctx, cc, frame.CID(), frame.Payload(), true)
		ch <- CallResult{Response: resp}
	}()
	return ch, nil
}

func (sm *LocalServiceMap) Services() []wire.ServiceID {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]wire.ServiceID, 0, len(sm.regs))
	for sid := range sm.regs {
		out = append(out, sid)
	}
	return out
}
