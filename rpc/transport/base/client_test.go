package base

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/serializer"
)

// --------------------------------------------------------------------------
// Test Helpers
// --------------------------------------------------------------------------

// testConnector dials plain TCP, no socket tuning
type testConnector struct{}

func (c *testConnector) GetName() string { return "test" }

func (c *testConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (c *testConnector) UpgradeConnection(net.Conn, common.ClientConfig) error {
	return nil
}

// recordingHandler collects handler callbacks for assertions
type recordingHandler struct {
	responses chan *common.Message
	failures  chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		responses: make(chan *common.Message, 16),
		failures:  make(chan error, 1),
	}
}

func (h *recordingHandler) OnResponse(msgid uint64, err string, result []byte) {
	h.responses <- &common.Message{MsgType: common.MsgTResponse, MsgID: msgid, Err: err, Result: result}
}

func (h *recordingHandler) OnConnectFailed(reason error) {
	h.failures <- reason
}

// echoServer accepts connections and answers every request with its first
// argument as the result. Notifications are recorded but not answered.
type echoServer struct {
	listener net.Listener
	ser      serializer.IRPCSerializer

	mu       sync.Mutex
	conns    []net.Conn
	notifies []string
}

func startEchoServer(t *testing.T) *echoServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test server: %v", err)
	}

	s := &echoServer{listener: listener, ser: serializer.NewBinarySerializer()}
	go s.acceptLoop()
	return s
}

func (s *echoServer) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.serve(conn)
	}
}

func (s *echoServer) serve(conn net.Conn) {
	defer conn.Close()
	for {
		data, err := readFrame(conn, nil)
		if err != nil {
			return
		}

		var msg common.Message
		if err := s.ser.Deserialize(data, &msg); err != nil {
			return
		}

		switch msg.MsgType {
		case common.MsgTRequest:
			var result []byte
			if len(msg.Args) > 0 {
				result = msg.Args[0]
			}
			resp, err := s.ser.Serialize(*common.NewResponseMessage(msg.MsgID, result, nil))
			if err != nil {
				return
			}
			if err := writeFrame(conn, resp); err != nil {
				return
			}
		case common.MsgTNotify:
			s.mu.Lock()
			s.notifies = append(s.notifies, msg.Method)
			s.mu.Unlock()
		}
	}
}

func (s *echoServer) addr() string {
	return s.listener.Addr().String()
}

func (s *echoServer) stop() {
	s.listener.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

func testTransportConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoint:       endpoint,
			ReconnectLimit: 1,
		},
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payloads := [][]byte{
		[]byte("hello"),
		{},
		make([]byte, 64*1024),
	}

	for _, payload := range payloads {
		go func(p []byte) {
			if err := writeFrame(client, p); err != nil {
				t.Errorf("Failed to write frame: %v", err)
			}
		}(payload)

		data, err := readFrame(server, nil)
		if err != nil {
			t.Fatalf("Failed to read frame: %v", err)
		}
		if len(data) != len(payload) {
			t.Errorf("Expected %d bytes, got %d", len(payload), len(data))
		}
	}
}

func TestSendReceive(t *testing.T) {
	server := startEchoServer(t)
	defer server.stop()

	handler := newRecordingHandler()
	tr := NewBaseClientTransport(&testConnector{}, serializer.NewBinarySerializer())

	if err := tr.Connect(testTransportConfig(server.addr()), handler); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer tr.Close()

	req := common.NewRequestMessage(7, "echo", [][]byte{[]byte("ping")})
	if err := tr.SendMessage(req, nil); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	select {
	case resp := <-handler.responses:
		if resp.MsgID != 7 {
			t.Errorf("Expected response for msgid 7, got %d", resp.MsgID)
		}
		if string(resp.Result) != "ping" {
			t.Errorf("Expected echoed result, got %q", resp.Result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No response received")
	}
}

func TestOnSentCallback(t *testing.T) {
	server := startEchoServer(t)
	defer server.stop()

	handler := newRecordingHandler()
	tr := NewBaseClientTransport(&testConnector{}, serializer.NewBinarySerializer())

	if err := tr.Connect(testTransportConfig(server.addr()), handler); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer tr.Close()

	sent := make(chan struct{})
	notify := common.NewNotifyMessage("log", [][]byte{[]byte("event")})
	if err := tr.SendMessage(notify, func() { close(sent) }); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("onSent callback was not invoked")
	}
}

func TestConnectFailsWithoutServer(t *testing.T) {
	handler := newRecordingHandler()
	tr := NewBaseClientTransport(&testConnector{}, serializer.NewBinarySerializer())

	// Nothing listens here
	err := tr.Connect(testTransportConfig("127.0.0.1:1"), handler)
	if err == nil {
		tr.Close()
		t.Fatal("Expected connect error")
	}
}

func TestConnectFailedReportedWhenServerDies(t *testing.T) {
	server := startEchoServer(t)

	handler := newRecordingHandler()
	tr := NewBaseClientTransport(&testConnector{}, serializer.NewBinarySerializer())

	if err := tr.Connect(testTransportConfig(server.addr()), handler); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer tr.Close()

	// Kill the server: the reader sees the broken connection, exhausts its
	// reconnect budget and must report the failure exactly once
	server.stop()

	select {
	case reason := <-handler.failures:
		if reason == nil {
			t.Error("Expected a non-nil failure reason")
		}
		if !strings.Contains(reason.Error(), "failed to reconnect") {
			t.Errorf("Expected reconnect failure reason, got: %v", reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnConnectFailed was not invoked")
	}

	// No second failure report
	select {
	case <-handler.failures:
		t.Fatal("OnConnectFailed must be invoked exactly once")
	case <-time.After(200 * time.Millisecond):
	}
}
