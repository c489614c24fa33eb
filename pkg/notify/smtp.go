package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPConfig holds the transport settings for one dispatch.
type SMTPConfig struct {
	Host        string
	User        string
	Password    string
	Port        int // 0 = derive from the transport mode
	Timeout     time.Duration
	UseSSL      bool
	UseSTARTTLS bool
}

// Dispatcher transmits rendered emails over a single blocking SMTP
// session per call. It never retries; retry policy belongs to the
// orchestrating layer.
type Dispatcher struct {
	now func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{now: time.Now}
}

// Send delivers the email from sender to recipient. The connection is
// released on every exit path. Authentication happens only when both an
// SMTP user and password are configured.
func (d *Dispatcher) Send(ctx context.Context, email Email, sender, recipient string, cfg SMTPConfig) error {
	if cfg.Host == "" {
		return &TransportError{Stage: "connect", Err: errors.New("smtp host is required")}
	}
	if recipient == "" {
		return &TransportError{Stage: "rcpt", Err: errors.New("recipient is required")}
	}

	mode, port, err := ResolveTransport(cfg.UseSSL, cfg.UseSTARTTLS, cfg.Port)
	if err != nil {
		return err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	slog.Info("Dispatching notification", "host", cfg.Host, "port", port, "transport", mode.String(), "recipient", recipient)

	conn, err := dialContext(ctx, addr, timeout)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &ConnectTimeoutError{Addr: addr, Err: err}
		}
		return &TransportError{Stage: "connect", Err: err}
	}
	// Bound the whole session, not just the dial.
	if err := conn.SetDeadline(d.now().Add(timeout)); err != nil {
		_ = conn.Close()
		return &TransportError{Stage: "connect", Err: err}
	}

	if mode == TransportSSL {
		conn = tls.Client(conn, &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12})
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return &TransportError{Stage: "connect", Err: err}
	}
	// Close releases the connection on every path; a successful Quit
	// below makes this a no-op.
	defer func() {
		if cerr := client.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			slog.Debug("SMTP close after session end", "error", cerr)
		}
	}()

	if mode == TransportSTARTTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return &TransportError{Stage: "starttls", Err: errors.New("server does not support STARTTLS")}
		}
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return &TransportError{Stage: "starttls", Err: err}
		}
	}

	if cfg.User != "" && cfg.Password != "" {
		auth := smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return &AuthRejectedError{Err: err}
		}
		slog.Debug("SMTP authentication successful", "user", cfg.User)
	}

	if err := client.Mail(sender); err != nil {
		return &TransportError{Stage: "mail", Err: fmt.Errorf("sender %s rejected: %w", sender, err)}
	}
	if err := client.Rcpt(recipient); err != nil {
		return &TransportError{Stage: "rcpt", Err: fmt.Errorf("recipient %s rejected: %w", recipient, err)}
	}

	msg, err := buildMessage(sender, recipient, email, d.now())
	if err != nil {
		return &TransportError{Stage: "data", Err: err}
	}
	writer, err := client.Data()
	if err != nil {
		return &TransportError{Stage: "data", Err: err}
	}
	if _, err := writer.Write(msg); err != nil {
		_ = writer.Close()
		return &TransportError{Stage: "data", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &TransportError{Stage: "data", Err: err}
	}

	if err := client.Quit(); err != nil {
		// The message was accepted; a failed QUIT is not worth failing the run.
		slog.Warn("Error during SMTP QUIT", "error", err)
	}

	slog.Info("Notification sent", "recipient", recipient)
	return nil
}

// dialContext dials with both the context and a hard timeout applied.
func dialContext(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, "tcp", addr)
}
