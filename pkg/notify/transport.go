package notify

// TransportMode selects how the SMTP connection is secured. The
// string-typed flags of ad-hoc shell configuration become a proper
// enumeration here, parsed once with an explicit precedence rule.
type TransportMode int

const (
	// TransportPlain is an unencrypted session (local relay/testing).
	TransportPlain TransportMode = iota
	// TransportSSL is implicit TLS from connect (default port 465).
	TransportSSL
	// TransportSTARTTLS upgrades a plaintext connection (default port 587).
	TransportSTARTTLS
)

// String returns a human-readable name for the transport mode.
func (m TransportMode) String() string {
	switch m {
	case TransportPlain:
		return "plain"
	case TransportSSL:
		return "ssl"
	case TransportSTARTTLS:
		return "starttls"
	default:
		return "unknown"
	}
}

// Default ports per transport mode.
const (
	portSSL      = 465
	portSTARTTLS = 587
	portPlain    = 25
)

// ResolveTransport determines the transport mode and port from the two
// mode flags and an optional explicit port (0 = unset). When both flags
// are set, SSL wins. When neither flag is set, a well-known explicit
// port selects the mode; with no port either, the configuration is
// ambiguous and rejected.
func ResolveTransport(useSSL, useSTARTTLS bool, port int) (TransportMode, int, error) {
	switch {
	case useSSL:
		// SSL takes precedence over STARTTLS when both are requested.
		if port == 0 {
			port = portSSL
		}
		return TransportSSL, port, nil
	case useSTARTTLS:
		if port == 0 {
			port = portSTARTTLS
		}
		return TransportSTARTTLS, port, nil
	case port == portSSL:
		return TransportSSL, port, nil
	case port == portSTARTTLS:
		return TransportSTARTTLS, port, nil
	case port != 0:
		return TransportPlain, port, nil
	default:
		return TransportPlain, 0, ErrAmbiguousTransport
	}
}
