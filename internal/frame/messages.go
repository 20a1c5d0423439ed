package frame

import (
	"encoding/json"
	"fmt"
)

// ClientHelloPayload is the CLIENT_HELLO payload. A sniffer sets
// Interface; a viewer sets Type to "gui". Role discrimination at the
// hub looks only at Interface: a non-empty "interface" value makes the
// client a sniffer, even when "type" is also present. Every other
// payload, including one whose "interface" key holds an empty string,
// is treated as a viewer.
type ClientHelloPayload struct {
	Hostname  string `json:"hostname"`
	Interface string `json:"interface,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Role reports which role this hello declares.
func (p ClientHelloPayload) Role() Role {
	if p.Interface != "" {
		return RoleSniffer
	}
	return RoleViewer
}

// Role discriminates hub sessions.
type Role string

const (
	RoleSniffer Role = "sniffer"
	RoleViewer  Role = "viewer"
)

// ServerHelloPayload is the SERVER_HELLO payload sent in response to
// an accepted CLIENT_HELLO.
type ServerHelloPayload struct {
	SSID       uint32 `json:"ssid"`
	IP         string `json:"ip"`
	Registered bool   `json:"registered"`
}

// ForwardLogPayload is the FORWARD_LOG payload, wrapping a sniffer's
// traffic record with the originating SSID.
type ForwardLogPayload struct {
	SSID uint32          `json:"ssid"`
	Log  json.RawMessage `json:"log"`
}

// ErrorPayload is the ERROR payload.
type ErrorPayload struct {
	Error string `json:"error"`
}

// DecodeClientHello parses a CLIENT_HELLO payload.
func DecodeClientHello(payload []byte) (ClientHelloPayload, error) {
	var p ClientHelloPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ClientHelloPayload{}, fmt.Errorf("frame: invalid CLIENT_HELLO payload: %w", err)
	}
	return p, nil
}

// EncodeServerHello encodes a SERVER_HELLO payload.
func EncodeServerHello(p ServerHelloPayload) ([]byte, error) {
	return json.Marshal(p)
}

// EncodeForwardLog encodes a FORWARD_LOG payload wrapping an
// already-encoded traffic record.
func EncodeForwardLog(ssid uint32, log []byte) ([]byte, error) {
	return json.Marshal(ForwardLogPayload{SSID: ssid, Log: log})
}

// EncodeError encodes an ERROR payload.
func EncodeError(msg string) ([]byte, error) {
	return json.Marshal(ErrorPayload{Error: msg})
}
