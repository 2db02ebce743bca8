// internal/server/server_test.go
package server

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	gmodbus "github.com/goburrow/modbus"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/serial-linktest/internal/config"
	"github.com/tamzrod/serial-linktest/internal/link"
	"github.com/tamzrod/serial-linktest/internal/outcome"
	"github.com/tamzrod/serial-linktest/internal/status"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func startServer(t *testing.T, agg Snapshotter, links int) string {
	t.Helper()
	addr := freeAddr(t)

	srv, err := New(Config{Listen: addr, Timeout: 5 * time.Second, MaxClients: 4},
		NewHandler(agg, links, quietLogger()), quietLogger())
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })

	return addr
}

func dial(t *testing.T, addr string) gmodbus.Client {
	t.Helper()
	h := gmodbus.NewTCPClientHandler(addr)
	h.Timeout = 2 * time.Second
	h.SlaveId = 1
	require.NoError(t, h.Connect())
	t.Cleanup(func() { h.Close() })
	return gmodbus.NewClient(h)
}

func words(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return out
}

func exceptionCode(t *testing.T, err error) byte {
	t.Helper()
	var me *gmodbus.ModbusError
	require.True(t, errors.As(err, &me), "expected modbus exception, got %v", err)
	return me.ExceptionCode
}

func TestServer_ReadInputRegistersOverTCP(t *testing.T) {
	ch := outcome.NewChannel(16)
	agg := status.NewAggregator(ch, status.PolicySticky, quietLogger())
	addr := startServer(t, agg, 3)
	client := dial(t, addr)

	ch.Publish(outcome.Event{LinkID: 0})
	ch.Publish(outcome.Event{LinkID: 2, Faults: outcome.Of(outcome.RecvFailed, outcome.BadData)})

	raw, err := client.ReadInputRegisters(0, 3)
	require.NoError(t, err)
	require.Equal(t, []uint16{15, 15, 3}, words(raw))

	raw, err = client.ReadInputRegisters(2, 1)
	require.NoError(t, err)
	require.Equal(t, []uint16{3}, words(raw))
}

func TestServer_Exceptions(t *testing.T) {
	agg := &fakeSnapshotter{}
	addr := startServer(t, agg, 2)
	client := dial(t, addr)

	_, err := client.ReadInputRegisters(1, 2)
	require.Equal(t, byte(gmodbus.ExceptionCodeIllegalDataAddress), exceptionCode(t, err))

	_, err = client.ReadHoldingRegisters(0, 1)
	require.Equal(t, byte(gmodbus.ExceptionCodeIllegalFunction), exceptionCode(t, err))

	_, err = client.WriteSingleRegister(0, 1)
	require.Equal(t, byte(gmodbus.ExceptionCodeIllegalFunction), exceptionCode(t, err))

	agg.err = status.ErrClosed
	_, err = client.ReadInputRegisters(0, 1)
	require.Equal(t, byte(gmodbus.ExceptionCodeServerDeviceBusy), exceptionCode(t, err))

	// The connection survives a failed snapshot.
	agg.err = nil
	raw, err := client.ReadInputRegisters(0, 1)
	require.NoError(t, err)
	require.Equal(t, []uint16{15}, words(raw))
}

// pipePort adapts one end of a net.Pipe to link.Port with a per-read timeout.
type pipePort struct {
	net.Conn
	name    string
	timeout time.Duration
}

func (p *pipePort) Name() string { return p.name }

func (p *pipePort) Read(b []byte) (int, error) {
	_ = p.Conn.SetReadDeadline(time.Now().Add(p.timeout))
	return p.Conn.Read(b)
}

// Link 0 transmits 01 02 01, link 1 echoes it back over a loopback pipe,
// and a poller reads link 0's register through the status server.
func TestEndToEnd_EchoLoopbackReportsHealthy(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	cfg := config.Default()
	cfg.LinkTest.IntervalMs = 1
	cfg.LinkTest.Payload = "01 02 01"
	cfg.LinkTest.Echo = true
	cfg.LinkTest.Status.Listen = freeAddr(t)
	cfg.LinkTest.Links = []config.LinkConfig{
		{Device: "pipe-a", Role: config.RoleTransmit},
		{Device: "pipe-b", Role: config.RoleListen},
	}
	require.NoError(t, config.Validate(cfg))
	config.Normalize(cfg)
	lt := cfg.LinkTest

	ch := outcome.NewChannel(lt.QueueSize)
	agg := status.NewAggregator(ch, status.PolicySticky, quietLogger())

	tx, err := link.Build(lt, 0, &pipePort{Conn: a, name: "pipe-a", timeout: time.Second}, ch, quietLogger())
	require.NoError(t, err)
	rx, err := link.Build(lt, 1, &pipePort{Conn: b, name: "pipe-b", timeout: 20 * time.Millisecond}, ch, quietLogger())
	require.NoError(t, err)

	srv, err := Build(lt, agg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go rx.Run(ctx)

	tx.CycleOnce()

	client := dial(t, lt.Status.Listen)
	raw, err := client.ReadInputRegisters(0, 1)
	require.NoError(t, err)
	require.Equal(t, []uint16{15}, words(raw))
}
