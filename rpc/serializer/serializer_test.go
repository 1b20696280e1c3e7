package serializer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dRPC/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Request without arguments
		{
			MsgType: common.MsgTRequest,
			MsgID:   1,
			Method:  "ping",
		},

		// Request with arguments
		{
			MsgType: common.MsgTRequest,
			MsgID:   42,
			Method:  "add",
			Args:    [][]byte{[]byte("2"), []byte("3")},
		},

		// Successful response
		{
			MsgType: common.MsgTResponse,
			MsgID:   42,
			Result:  []byte("5"),
		},

		// Error response
		{
			MsgType: common.MsgTResponse,
			MsgID:   7,
			Err:     "no such method",
		},

		// Notification
		{
			MsgType: common.MsgTNotify,
			Method:  "log",
			Args:    [][]byte{[]byte("hello")},
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestJSONWireShape tests that the JSON serializer produces the
// position-significant array encoding of the protocol
func TestJSONWireShape(t *testing.T) {
	s := NewJSONSerializer()

	t.Run("Request", func(t *testing.T) {
		data, err := s.Serialize(common.Message{
			MsgType: common.MsgTRequest,
			MsgID:   3,
			Method:  "echo",
			Args:    [][]byte{[]byte("x")},
		})
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			t.Fatalf("Wire form is not a JSON array: %v", err)
		}
		if len(elems) != 4 {
			t.Fatalf("Request must have 4 elements, got %d", len(elems))
		}
		if string(elems[0]) != "0" {
			t.Errorf("Request tag must be 0, got %s", elems[0])
		}
		if string(elems[1]) != "3" {
			t.Errorf("Expected msgid 3, got %s", elems[1])
		}
		if string(elems[2]) != `"echo"` {
			t.Errorf("Expected method at position 2, got %s", elems[2])
		}
	})

	t.Run("Notify", func(t *testing.T) {
		data, err := s.Serialize(common.Message{
			MsgType: common.MsgTNotify,
			Method:  "log",
		})
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			t.Fatalf("Wire form is not a JSON array: %v", err)
		}
		if len(elems) != 3 {
			t.Fatalf("Notify must have 3 elements (no msgid), got %d", len(elems))
		}
		if string(elems[0]) != "2" {
			t.Errorf("Notify tag must be 2, got %s", elems[0])
		}
		if string(elems[1]) != `"log"` {
			t.Errorf("Expected method at position 1, got %s", elems[1])
		}
	})

	t.Run("ErrorResponse", func(t *testing.T) {
		data, err := s.Serialize(common.Message{
			MsgType: common.MsgTResponse,
			MsgID:   9,
			Err:     "boom",
		})
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			t.Fatalf("Wire form is not a JSON array: %v", err)
		}
		if len(elems) != 4 {
			t.Fatalf("Response must have 4 elements, got %d", len(elems))
		}
		if string(elems[2]) != `"boom"` {
			t.Errorf("Expected error at position 2, got %s", elems[2])
		}
		if string(elems[3]) != "null" {
			t.Errorf("Expected null result for error response, got %s", elems[3])
		}
	})
}

// TestDeserializeGarbage tests that malformed input is rejected with an error
func TestDeserializeGarbage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			var msg common.Message
			if err := serializer.Deserialize([]byte{0xFF}, &msg); err == nil {
				t.Error("Expected error when deserializing garbage, got nil")
			}
		})
	}
}
