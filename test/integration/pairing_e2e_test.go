// Package integration contains end-to-end tests for the pairing stack:
// client and server pairing over real TCP loopback, and the discovery-driven
// flow (browse for the endpoint, connect, pair) with a mocked mDNS resolver.
package integration

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/backkem/adbpair/pkg/discovery"
	"github.com/backkem/adbpair/pkg/pairing"
	"github.com/backkem/adbpair/pkg/pairing/auth"
)

// pairResult carries one side's outcome across goroutines.
type pairResult struct {
	info *pairing.PeerInfo
	err  error
}

// pairOverTCP runs a complete server+client pairing over loopback and
// returns both outcomes.
func pairOverTCP(t *testing.T, serverPassword, clientPassword []byte) (server, client pairResult) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer listener.Close()

	serverCh := make(chan pairResult, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			serverCh <- pairResult{err: err}
			return
		}

		pc, err := pairing.NewServerConnection(conn, pairing.Config{
			Password: serverPassword,
			PeerInfo: pairing.PeerInfo{
				Type: pairing.PeerInfoDeviceGUID,
				Data: []byte("adb-SERVER0000000001"),
			},
		})
		if err != nil {
			conn.Close()
			serverCh <- pairResult{err: err}
			return
		}
		defer pc.Close()

		info, err := pc.Pair()
		serverCh <- pairResult{info: info, err: err}
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	pc, err := pairing.NewClientConnection(conn, pairing.Config{
		Password: clientPassword,
		PeerInfo: pairing.PeerInfo{
			Type: pairing.PeerInfoDeviceGUID,
			Data: []byte("adb-CLIENT0000000001"),
		},
	})
	if err != nil {
		conn.Close()
		t.Fatalf("NewClientConnection failed: %v", err)
	}
	defer pc.Close()

	info, err := pc.Pair()
	client = pairResult{info: info, err: err}

	select {
	case server = <-serverCh:
	case <-time.After(10 * time.Second):
		t.Fatal("server side did not finish")
	}
	return server, client
}

func TestPairing_TCP(t *testing.T) {
	password := []byte("352901")

	server, client := pairOverTCP(t, password, password)

	if server.err != nil {
		t.Fatalf("server Pair() error = %v", server.err)
	}
	if client.err != nil {
		t.Fatalf("client Pair() error = %v", client.err)
	}

	if !bytes.Equal(client.info.Data, []byte("adb-SERVER0000000001")) {
		t.Errorf("client got peer GUID %q, want server's", client.info.Data)
	}
	if !bytes.Equal(server.info.Data, []byte("adb-CLIENT0000000001")) {
		t.Errorf("server got peer GUID %q, want client's", server.info.Data)
	}
	if client.info.Type != pairing.PeerInfoDeviceGUID || server.info.Type != pairing.PeerInfoDeviceGUID {
		t.Error("peer info types not preserved across the wire")
	}
}

func TestPairing_TCP_WrongPassword(t *testing.T) {
	server, client := pairOverTCP(t, []byte("352901"), []byte("352902"))

	// Both sides must fail, and the failure must be the authenticated
	// decryption rejecting the peer-info blob, not a protocol error.
	if client.err == nil {
		t.Fatal("client Pair() succeeded with wrong password")
	}
	if server.err == nil {
		t.Fatal("server Pair() succeeded with wrong password")
	}
	if !errors.Is(client.err, auth.ErrDecryptionFailed) {
		t.Errorf("client error = %v, want ErrDecryptionFailed", client.err)
	}
	if !errors.Is(server.err, auth.ErrDecryptionFailed) {
		t.Errorf("server error = %v, want ErrDecryptionFailed", server.err)
	}
}

// TestPairing_DiscoveryFlow drives the whole client journey: browse for a
// pairing endpoint, connect to its advertised address, pair. The mDNS layer
// is mocked; the pairing connection is real TCP.
func TestPairing_DiscoveryFlow(t *testing.T) {
	password := []byte("951753")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	// The "device": advertise (mocked) and accept one pairing.
	mock := discovery.NewMockMDNSResolver()
	mock.RegisterService(discovery.ServicePairing, discovery.MockPairingService(
		"adb-E2E0000000000001", port, net.ParseIP("127.0.0.1"), "e2e device"))

	serverCh := make(chan pairResult, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			serverCh <- pairResult{err: err}
			return
		}
		pc, err := pairing.NewServerConnection(conn, pairing.Config{
			Password: password,
			PeerInfo: pairing.PeerInfo{
				Type: pairing.PeerInfoDeviceGUID,
				Data: []byte("adb-E2E0000000000001"),
			},
		})
		if err != nil {
			conn.Close()
			serverCh <- pairResult{err: err}
			return
		}
		defer pc.Close()
		info, err := pc.Pair()
		serverCh <- pairResult{info: info, err: err}
	}()

	// The "host": discover, dial, pair.
	resolver, err := discovery.NewResolver(discovery.ResolverConfig{
		MDNSResolver:  mock,
		BrowseTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	svc, err := resolver.DiscoverPairing(context.Background())
	if err != nil {
		t.Fatalf("DiscoverPairing failed: %v", err)
	}
	if svc.DeviceName() != "e2e device" {
		t.Errorf("DeviceName() = %q, want %q", svc.DeviceName(), "e2e device")
	}

	conn, err := net.Dial("tcp", svc.Addr())
	if err != nil {
		t.Fatalf("Dial(%s) failed: %v", svc.Addr(), err)
	}

	pc, err := pairing.NewClientConnection(conn, pairing.Config{
		Password: password,
		PeerInfo: pairing.PeerInfo{
			Type: pairing.PeerInfoDeviceGUID,
			Data: []byte("adb-HOST000000000001"),
		},
	})
	if err != nil {
		conn.Close()
		t.Fatalf("NewClientConnection failed: %v", err)
	}
	defer pc.Close()

	peer, err := pc.Pair()
	if err != nil {
		t.Fatalf("client Pair() error = %v", err)
	}
	if string(peer.Data) != svc.InstanceName {
		t.Errorf("paired GUID %q does not match advertised instance %q", peer.Data, svc.InstanceName)
	}

	select {
	case server := <-serverCh:
		if server.err != nil {
			t.Fatalf("server Pair() error = %v", server.err)
		}
		if !bytes.Equal(server.info.Data, []byte("adb-HOST000000000001")) {
			t.Errorf("server got peer GUID %q, want host's", server.info.Data)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server side did not finish")
	}
}

// TestPairing_TCP_Sequential verifies the same listener can serve several
// pairing attempts in sequence, each with a fresh connection and password.
func TestPairing_TCP_Sequential(t *testing.T) {
	passwords := [][]byte{
		[]byte("000000"),
		[]byte("999999"),
		[]byte("correct horse battery staple"),
	}

	for _, password := range passwords {
		server, client := pairOverTCP(t, password, password)
		if server.err != nil || client.err != nil {
			t.Fatalf("pairing with %q failed: server=%v client=%v", password, server.err, client.err)
		}
	}
}
