// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/json"

// ErrorKind taxonomizes the errors this protocol can surface across a
// connection. A remote error is not a side channel: it is itself a frame
// (sid = ServiceIDFull, same cid as the request it answers) whose payload
// is one of these kinds plus a human-readable description.
type ErrorKind uint8

const (
	ErrorKindDeserialize ErrorKind = iota
	ErrorKindSerialize
	ErrorKindUnknownService
	ErrorKindNoHandler
	ErrorKindDowncast
	ErrorKindHandlerDead
	ErrorKindRelayGone
	ErrorKindConnectionClosed
	ErrorKindMessageSizeExceeded
	ErrorKindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindDeserialize:
		return "Deserialize"
	case ErrorKindSerialize:
		return "Serialize"
	case ErrorKindUnknownService:
		return "UnknownService"
	case ErrorKindNoHandler:
		return "NoHandler"
	case ErrorKindDowncast:
		return "Downcast"
	case ErrorKindHandlerDead:
		return "HandlerDead"
	case ErrorKindRelayGone:
		return "RelayGone"
	case ErrorKindConnectionClosed:
		return "ConnectionClosed"
	case ErrorKindMessageSizeExceeded:
		return "MessageSizeExceeded"
	case ErrorKindTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// errorPayload is the wire shape of an error frame's body. It is encoded
// with encoding/json rather than the application's configured Codec,
// deliberately: protocol-level error frames must remain decodable by any
// peer regardless of which payload codec the application chose for its own
// messages.
type errorPayload struct {
	Kind        ErrorKind `json:"kind"`
	Description string    `json:"description"`
	ServiceID   []byte    `json:"sid,omitempty"`
	RelayID     string    `json:"relay_id,omitempty"`
	RelayName   string    `json:"relay_name,omitempty"`
}

// ErrorFrame is the decoded payload of a wire-format error response frame,
// as produced by BuildErrorFrame/BuildUnknownServiceFrame/BuildRelayGoneFrame
// and recovered by ParseErrorFrame. ServiceID is set only for
// ErrorKindUnknownService; RelayID/RelayName are set only for
// ErrorKindRelayGone.
type ErrorFrame struct {
	Kind        ErrorKind
	Description string
	ServiceID   ServiceID
	RelayID     string
	RelayName   string
}

// BuildErrorFrame constructs a wire-format error response frame: sid =
// ServiceIDFull, cid = cid (echoing the request this error answers).
func BuildErrorFrame(cid ConnID, kind ErrorKind, description string) (*Frame, error) {
	return buildErrorFrame(cid, kind, description, nil, "", "")
}

// BuildUnknownServiceFrame is BuildErrorFrame specialized for
// ErrorKindUnknownService, which additionally carries the offending sid.
func BuildUnknownServiceFrame(cid ConnID, offending ServiceID) (*Frame, error) {
	return buildErrorFrame(cid, ErrorKindUnknownService, "unknown service", offending[:], "", "")
}

// BuildRelayGoneFrame is BuildErrorFrame specialized for ErrorKindRelayGone,
// which additionally carries the identity of the downstream relay that
// became unreachable, so a caller several hops away can still tell which
// relay failed.
func BuildRelayGoneFrame(cid ConnID, relayID, relayName, description string) (*Frame, error) {
	return buildErrorFrame(cid, ErrorKindRelayGone, description, nil, relayID, relayName)
}

func buildErrorFrame(cid ConnID, kind ErrorKind, description string, sid []byte, relayID, relayName string) (*Frame, error) {
	payload, err := json.Marshal(errorPayload{
		Kind:        kind,
		Description: description,
		ServiceID:   sid,
		RelayID:     relayID,
		RelayName:   relayName,
	})
	if err != nil {
		return nil, err
	}
	f := NewFrame(len(payload))
	f.SetSID(ServiceIDFull).SetCID(cid).AppendPayload(payload)
	return f, nil
}

// ParseErrorFrame decodes an error frame's payload. f must have
// f.SID() == ServiceIDFull and carry a payload produced by BuildErrorFrame,
// BuildUnknownServiceFrame, or BuildRelayGoneFrame.
func ParseErrorFrame(f *Frame) (ErrorFrame, error) {
	var p errorPayload
	if err := json.Unmarshal(f.Payload(), &p); err != nil {
		return ErrorFrame{}, err
	}
	ef := ErrorFrame{
		Kind:        p.Kind,
		Description: p.Description,
		RelayID:     p.RelayID,
		RelayName:   p.RelayName,
	}
	if len(p.ServiceID) == 16 {
		copy(ef.ServiceID[:], p.ServiceID)
	}
	return ef, nil
}
