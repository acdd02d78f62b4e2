package tor

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// serveOnce accepts a single connection on a loopback listener and hands it
// to handle. It returns the listener address.
func serveOnce(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return listener.Addr().String()
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"ip and port", "127.0.0.1:9050", false},
		{"hostname and port", "localhost:9050", false},
		{"ipv6", "[::1]:9050", false},
		{"empty", "", true},
		{"no port", "127.0.0.1", true},
		{"no host", ":9050", true},
		{"port out of range", "127.0.0.1:70000", true},
		{"non-numeric port", "127.0.0.1:tor", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(tt.address, 5*time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.ProxyAddress() != tt.address {
				t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), tt.address)
			}
		})
	}
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()
			if tt.status.String() != tt.str {
				t.Errorf("String() = %q, expected %q", tt.status.String(), tt.str)
			}
			if !errors.Is(tt.status.Error(), tt.wantErr) {
				t.Errorf("Error() = %v, expected %v", tt.status.Error(), tt.wantErr)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("expected unknown status to stringify as unknown with an error")
	}
}

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect when nothing listens", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatal(err)
		}
		addr := listener.Addr().String()
		listener.Close()

		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for an HTTP server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})
		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType when auth is required", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})
		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for a SOCKS5 reply even when the connect fails", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})
			req := make([]byte, 256)
			_, _ = conn.Read(req)
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})
		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns WrongType for a SOCKS4 connect reply", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})
			req := make([]byte, 256)
			_, _ = conn.Read(req)
			_, _ = conn.Write([]byte{0x04, 0x5A, 0x00, 0x00})
		})
		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns Timeout for a silent listener", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		t.Cleanup(func() { close(done) })
		addr := serveOnce(t, func(net.Conn) { <-done })

		client, err := NewClient(addr, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusTimeout {
			t.Errorf("expected ProxyStatusTimeout, got %v", status)
		}
	})
}

func TestDialContextCancelled(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.DialContext(ctx, "tcp", "check.torproject.org:443"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 7*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	hc := client.NewHTTPClient()
	if hc.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", hc.Timeout)
	}
	if hc.Transport == nil {
		t.Error("expected a SOCKS transport")
	}
}
