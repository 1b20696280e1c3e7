package common

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single wire message. Which fields are used depends
// on the type of message:
//
//   - Request:  MsgType, MsgID, Method, Args
//   - Response: MsgType, MsgID, Err, Result
//   - Notify:   MsgType, Method, Args
//
// On the wire a Message is array-encoded with position-significant fields
// (see MarshalJSON), matching the classic request/response RPC framing.
type Message struct {
	// Type of message
	MsgType MessageType

	// Correlation id, used for: Request, Response
	MsgID uint64

	// Method name, used for: Request, Notify
	Method string

	// Call arguments, used for: Request, Notify
	Args [][]byte

	// Response only fields
	Err    string // Empty if no error, otherwise contains the error message
	Result []byte // Return value of the call
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewRequestMessage creates a new Request message
func NewRequestMessage(msgid uint64, method string, args [][]byte) *Message {
	return &Message{
		MsgType: MsgTRequest,
		MsgID:   msgid,
		Method:  method,
		Args:    args,
	}
}

// NewNotifyMessage creates a new Notify message (no id, no reply expected)
func NewNotifyMessage(method string, args [][]byte) *Message {
	return &Message{
		MsgType: MsgTNotify,
		Method:  method,
		Args:    args,
	}
}

// NewResponseMessage creates a new Response message
func NewResponseMessage(msgid uint64, result []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTResponse,
		MsgID:   msgid,
		Result:  result,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Response message carrying only an error
func NewErrorResponse(msgid uint64, err string) *Message {
	return &Message{
		MsgType: MsgTResponse,
		MsgID:   msgid,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Wire Encoding (position-significant arrays)
// --------------------------------------------------------------------------

// MarshalJSON implements the json.Marshaller interface for Message.
// Messages are encoded as position-significant arrays:
//
//	Request:  [0, msgid, method, args]
//	Response: [1, msgid, err|null, result|null]
//	Notify:   [2, method, args]
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.MsgType {
	case MsgTRequest:
		return json.Marshal([]any{m.MsgType, m.MsgID, m.Method, encodeArgs(m.Args)})
	case MsgTResponse:
		var wireErr any
		if m.Err != "" {
			wireErr = m.Err
		}
		var wireResult any
		if m.Result != nil {
			wireResult = base64.StdEncoding.EncodeToString(m.Result)
		}
		return json.Marshal([]any{m.MsgType, m.MsgID, wireErr, wireResult})
	case MsgTNotify:
		return json.Marshal([]any{m.MsgType, m.Method, encodeArgs(m.Args)})
	default:
		return nil, fmt.Errorf("cannot encode message of unknown type %d", uint8(m.MsgType))
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface for Message.
// It decodes the position-significant array form produced by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) < 3 {
		return fmt.Errorf("malformed message: expected at least 3 elements, got %d", len(elems))
	}

	var tag uint8
	if err := json.Unmarshal(elems[0], &tag); err != nil {
		return fmt.Errorf("malformed message tag: %v", err)
	}

	*m = Message{MsgType: MessageType(tag)}

	switch m.MsgType {
	case MsgTRequest:
		if len(elems) != 4 {
			return fmt.Errorf("malformed request: expected 4 elements, got %d", len(elems))
		}
		if err := json.Unmarshal(elems[1], &m.MsgID); err != nil {
			return err
		}
		if err := json.Unmarshal(elems[2], &m.Method); err != nil {
			return err
		}
		return decodeArgs(elems[3], &m.Args)
	case MsgTResponse:
		if len(elems) != 4 {
			return fmt.Errorf("malformed response: expected 4 elements, got %d", len(elems))
		}
		if err := json.Unmarshal(elems[1], &m.MsgID); err != nil {
			return err
		}
		if string(elems[2]) != "null" {
			if err := json.Unmarshal(elems[2], &m.Err); err != nil {
				return err
			}
		}
		if string(elems[3]) != "null" {
			var b64 string
			if err := json.Unmarshal(elems[3], &b64); err != nil {
				return err
			}
			result, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return err
			}
			m.Result = result
		}
		return nil
	case MsgTNotify:
		if err := json.Unmarshal(elems[1], &m.Method); err != nil {
			return err
		}
		return decodeArgs(elems[2], &m.Args)
	default:
		return fmt.Errorf("unknown message tag: %d", tag)
	}
}

// encodeArgs converts raw argument bytes to their wire (base64 string) form
func encodeArgs(args [][]byte) []string {
	encoded := make([]string, len(args))
	for i, arg := range args {
		encoded[i] = base64.StdEncoding.EncodeToString(arg)
	}
	return encoded
}

// decodeArgs parses the wire form of an argument list back into raw bytes
func decodeArgs(data json.RawMessage, args *[][]byte) error {
	var encoded []string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	if len(encoded) == 0 {
		return nil
	}
	decoded := make([][]byte, len(encoded))
	for i, s := range encoded {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return err
		}
		decoded[i] = b
	}
	*args = decoded
	return nil
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
// The numeric values are wire tags and must not change.
type MessageType uint8

const (
	MsgTRequest  MessageType = 0 // Request expecting a response
	MsgTResponse MessageType = 1 // Response to a previous request
	MsgTNotify   MessageType = 2 // One-way notification, no response
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRequest:
		return "request"
	case MsgTResponse:
		return "response"
	case MsgTNotify:
		return "notify"
	default:
		return "unknown"
	}
}
