package serializer

import (
	"testing"

	"github.com/ValentinKolb/dRPC/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"SmallRequest": {
			MsgType: common.MsgTRequest,
			MsgID:   1,
			Method:  "ping",
		},
		"RequestWithArgs": {
			MsgType: common.MsgTRequest,
			MsgID:   2,
			Method:  "add",
			Args:    [][]byte{[]byte("2"), []byte("3")},
		},
		"LargeRequest": {
			MsgType: common.MsgTRequest,
			MsgID:   3,
			Method:  "store",
			Args:    [][]byte{make([]byte, 16*1024)}, // 16KB payload
		},
		"SmallResponse": {
			MsgType: common.MsgTResponse,
			MsgID:   1,
			Result:  []byte("pong"),
		},
		"LargeResponse": {
			MsgType: common.MsgTResponse,
			MsgID:   3,
			Result:  make([]byte, 16*1024),
		},
		"ErrorResponse": {
			MsgType: common.MsgTResponse,
			MsgID:   4,
			Err:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		},
		"Notify": {
			MsgType: common.MsgTNotify,
			Method:  "log",
			Args:    [][]byte{[]byte("medium length value for benchmarking purposes")},
		},
	}
}

// BenchmarkSerialize measures serialization throughput of each implementation
func BenchmarkSerialize(b *testing.B) {
	for serName, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range benchmarkMessages() {
			b.Run(serName+"/"+msgName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := serializer.Serialize(msg); err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize measures deserialization throughput of each implementation
func BenchmarkDeserialize(b *testing.B) {
	for serName, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range benchmarkMessages() {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Failed to prepare message: %v", err)
			}

			b.Run(serName+"/"+msgName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					var result common.Message
					if err := serializer.Deserialize(data, &result); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
