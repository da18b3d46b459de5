package procsig

import (
	"fmt"
	"strings"
)

// Kind is one of the four signals a caller may request.
type Kind int

const (
	Terminate Kind = iota + 1
	Kill
	Stop
	Continue
)

// Kinds lists every valid Kind in display order.
var Kinds = []Kind{Terminate, Kill, Stop, Continue}

func (k Kind) String() string {
	switch k {
	case Terminate:
		return "terminate"
	case Kill:
		return "kill"
	case Stop:
		return "stop"
	case Continue:
		return "continue"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts terminate, kill, stop and continue as well as the
// SIGTERM, SIGKILL, SIGSTOP and SIGCONT names, with or without the SIG
// prefix and in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "SIG") {
	case "TERMINATE", "TERM":
		return Terminate, nil
	case "KILL":
		return Kill, nil
	case "STOP":
		return Stop, nil
	case "CONTINUE", "CONT":
		return Continue, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < Terminate || k > Continue {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
