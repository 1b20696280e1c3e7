package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dRPC/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasMsgID  byte = 1 << 0
	hasMethod byte = 1 << 1
	hasArgs   byte = 1 << 2
	hasErr    byte = 1 << 3
	hasResult byte = 1 << 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle MsgID
	if msg.MsgID > 0 {
		flags |= hasMsgID
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.MsgID)
		pos += 8
	}

	// Handle Method
	if msg.Method != "" {
		flags |= hasMethod
		methodBytes := []byte(msg.Method)
		methodLen := len(methodBytes)

		// Write method length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(methodLen))
		pos += 4

		// Write method data
		copy(result[pos:pos+methodLen], methodBytes)
		pos += methodLen
	}

	// Handle Args
	if msg.Args != nil {
		flags |= hasArgs

		// Write argument count
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Args)))
		pos += 4

		// Write each argument as length + data
		for _, arg := range msg.Args {
			argLen := len(arg)
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(argLen))
			pos += 4
			if argLen > 0 {
				copy(result[pos:pos+argLen], arg)
				pos += argLen
			}
		}
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Result
	if msg.Result != nil {
		flags |= hasResult
		resultLen := len(msg.Result)

		// Write result length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(resultLen))
		pos += 4

		// Write result data
		if resultLen > 0 {
			copy(result[pos:pos+resultLen], msg.Result)
			pos += resultLen
		}
	}

	// Write flags byte
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 2 {
		return fmt.Errorf("invalid data: too short (%d bytes)", len(data))
	}

	// Read message type and flags
	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	// Handle MsgID
	if flags&hasMsgID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("invalid data: truncated msgid")
		}
		msg.MsgID = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Method
	if flags&hasMethod != 0 {
		methodBytes, newPos, err := readLengthPrefixed(data, pos, "method")
		if err != nil {
			return err
		}
		msg.Method = string(methodBytes)
		pos = newPos
	}

	// Handle Args
	if flags&hasArgs != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("invalid data: truncated args count")
		}
		count := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		msg.Args = make([][]byte, count)
		for i := uint32(0); i < count; i++ {
			argBytes, newPos, err := readLengthPrefixed(data, pos, "arg")
			if err != nil {
				return err
			}
			// Copy since data may be a reused read buffer
			msg.Args[i] = append([]byte{}, argBytes...)
			pos = newPos
		}
	}

	// Handle Err
	if flags&hasErr != 0 {
		errBytes, newPos, err := readLengthPrefixed(data, pos, "err")
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
		pos = newPos
	}

	// Handle Result
	if flags&hasResult != 0 {
		resultBytes, newPos, err := readLengthPrefixed(data, pos, "result")
		if err != nil {
			return err
		}
		msg.Result = append([]byte{}, resultBytes...)
		pos = newPos
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the number of bytes needed to serialize the message
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 2 // MsgType + flags

	if msg.MsgID > 0 {
		size += 8
	}
	if msg.Method != "" {
		size += 4 + len(msg.Method)
	}
	if msg.Args != nil {
		size += 4
		for _, arg := range msg.Args {
			size += 4 + len(arg)
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Result != nil {
		size += 4 + len(msg.Result)
	}

	return size
}

// readLengthPrefixed reads a uint32 length followed by that many bytes
func readLengthPrefixed(data []byte, pos int, field string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, 0, fmt.Errorf("invalid data: truncated %s length", field)
	}
	length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+length > len(data) {
		return nil, 0, fmt.Errorf("invalid data: truncated %s data", field)
	}
	return data[pos : pos+length], pos + length, nil
}
