package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeSMTPServer speaks just enough SMTP for one plaintext session and
// records what the client sent.
type fakeSMTPServer struct {
	listener net.Listener
	commands chan string
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &fakeSMTPServer{listener: ln, commands: make(chan string, 64)}
	go srv.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return srv
}

func (s *fakeSMTPServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return host, port
}

func (s *fakeSMTPServer) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	write("220 fake ESMTP ready")

	reader := bufio.NewReader(conn)
	inData := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if inData {
			if line == "." {
				inData = false
				write("250 2.0.0 accepted")
			}
			continue
		}

		s.commands <- line
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			write("250-fake greets you")
			write("250 8BITMIME")
		case "MAIL", "RCPT":
			write("250 2.1.0 OK")
		case "DATA":
			inData = true
			write("354 go ahead")
		case "QUIT":
			write("221 2.0.0 bye")
			return
		default:
			write("502 5.5.2 not implemented")
		}
	}
}

func (s *fakeSMTPServer) sawCommand(prefix string) bool {
	for {
		select {
		case cmd := <-s.commands:
			if strings.HasPrefix(strings.ToUpper(cmd), strings.ToUpper(prefix)) {
				return true
			}
		default:
			return false
		}
	}
}

func TestSend_PlaintextSession(t *testing.T) {
	srv := newFakeSMTPServer(t)
	host, port := srv.hostPort(t)

	email := Email{Subject: "s", HTMLBody: "<p>reminder</p>"}
	cfg := SMTPConfig{Host: host, Port: port, Timeout: 5 * time.Second}

	err := NewDispatcher().Send(context.Background(), email, "from@example.com", "to@example.com", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !srv.sawCommand("MAIL FROM:<from@example.com>") {
		t.Error("server never saw MAIL FROM")
	}
}

func TestSend_NoAuthWithoutFullCredentials(t *testing.T) {
	srv := newFakeSMTPServer(t)
	host, port := srv.hostPort(t)

	// User without password: session must proceed unauthenticated.
	cfg := SMTPConfig{Host: host, Port: port, User: "user", Timeout: 5 * time.Second}
	email := Email{Subject: "s", HTMLBody: "<p>x</p>"}

	if err := NewDispatcher().Send(context.Background(), email, "a@b.c", "d@e.f", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.sawCommand("AUTH") {
		t.Error("client attempted AUTH without a password")
	}
}

func TestSend_AmbiguousTransport(t *testing.T) {
	cfg := SMTPConfig{Host: "mail.example.com"} // no flags, no port
	err := NewDispatcher().Send(context.Background(), Email{}, "a@b.c", "d@e.f", cfg)
	if !errors.Is(err, ErrAmbiguousTransport) {
		t.Errorf("error = %v, want ErrAmbiguousTransport", err)
	}
}

func TestSend_RequiresRecipient(t *testing.T) {
	cfg := SMTPConfig{Host: "mail.example.com", Port: 1025}
	err := NewDispatcher().Send(context.Background(), Email{}, "a@b.c", "", cfg)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("error = %v, want TransportError", err)
	}
}

func TestSend_ConnectFailure(t *testing.T) {
	// Grab a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	_ = ln.Close()

	cfg := SMTPConfig{Host: host, Port: port, Timeout: 2 * time.Second}
	sendErr := NewDispatcher().Send(context.Background(), Email{Subject: "s"}, "a@b.c", "d@e.f", cfg)
	if sendErr == nil {
		t.Fatal("expected error dialing a closed port")
	}
	var transportErr *TransportError
	var timeoutErr *ConnectTimeoutError
	if !errors.As(sendErr, &transportErr) && !errors.As(sendErr, &timeoutErr) {
		t.Errorf("error = %v, want TransportError or ConnectTimeoutError", sendErr)
	}
}
