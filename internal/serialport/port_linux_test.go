//go:build linux

package serialport

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/serial-linktest/internal/link"
)

func openPTY(t *testing.T, timeout time.Duration) (*Port, *os.File) {
	t.Helper()

	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := Open(Config{
		Device:   slave.Name(),
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })

	return port, master
}

func TestPort_PTYRoundTrip(t *testing.T) {
	port, master := openPTY(t, 500*time.Millisecond)

	_, err := master.Write([]byte{0x01, 0x02, 0x01})
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(port, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x01}, buf)

	_, err = port.Write([]byte("pong"))
	require.NoError(t, err)

	got := make([]byte, 4)
	_, err = io.ReadFull(master, got)
	require.NoError(t, err)
	require.Equal(t, "pong", string(got))
}

func TestPort_ReadTimeout(t *testing.T) {
	port, _ := openPTY(t, 20*time.Millisecond)

	start := time.Now()
	n, err := port.Read(make([]byte, 8))
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), time.Second)

	var te interface{ Timeout() bool }
	require.True(t, errors.As(err, &te))
	require.True(t, te.Timeout())
}

func TestOpen_MissingDevice(t *testing.T) {
	_, err := Open(Config{Device: filepath.Join(t.TempDir(), "ttyNOPE"), BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N"})
	require.Error(t, err)

	_, err = Open(Config{})
	require.Error(t, err)
}

func TestOpenAll_FailsAsAWhole(t *testing.T) {
	_, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { slave.Close() })

	good := Config{Device: slave.Name(), BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N", Timeout: time.Second}
	bad := good
	bad.Device = filepath.Join(t.TempDir(), "ttyNOPE")

	ports, closeAll, err := OpenAll([]Config{good, bad})
	require.Error(t, err)
	require.Nil(t, ports)
	require.Nil(t, closeAll)

	ports, closeAll, err = OpenAll([]Config{good})
	require.NoError(t, err)
	require.Len(t, ports, 1)
	require.NoError(t, closeAll())
}

func TestPort_TransmitterAgainstEchoListener(t *testing.T) {
	port, master := openPTY(t, 500*time.Millisecond)

	log := logrus.New()
	log.SetOutput(io.Discard)

	tx, err := link.New(link.Config{
		ID:       0,
		Role:     link.Transmitter,
		Interval: time.Millisecond,
		Payload:  []byte{0x01, 0x02, 0x01},
	}, port, nil, log)
	require.NoError(t, err)

	// The PTY master plays the far end of the cable.
	rx, err := link.New(link.Config{
		ID:       1,
		Role:     link.Listener,
		Interval: time.Millisecond,
		Echo:     true,
	}, master, nil, log)
	require.NoError(t, err)

	echoed := make(chan int, 1)
	go func() { echoed <- rx.ListenOnce() }()

	faults := tx.TransmitOnce()
	require.True(t, faults.Empty(), "faults: %v", faults)

	select {
	case n := <-echoed:
		require.Positive(t, n)
	case <-time.After(time.Second):
		t.Fatal("listener never echoed")
	}
}
