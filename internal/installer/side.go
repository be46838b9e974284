package installer

import (
	"fmt"
	"strings"
)

// Side is the execution context a version is installed for.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

func (s Side) String() string {
	return string(s)
}

// ParseSide accepts "client" or "server" in any case. An empty value is the client.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(SideClient):
		return SideClient, nil
	case string(SideServer):
		return SideServer, nil
	}
	return "", fmt.Errorf("unknown side %q, expected client or server", value)
}

func (s Side) orDefault() Side {
	if s == "" {
		return SideClient
	}
	return s
}
