// Package remote bridges the environment to an external policy runtime over
// a websocket connection carrying JSON obs/act messages.
package remote

import (
	"encoding/json"
	"fmt"
)

// Version is the wire protocol version. Both sides must agree.
const Version = "1"

// Message types.
const (
	TypeHello   = "hello"
	TypeWelcome = "welcome"
	TypeObs     = "obs"
	TypeAct     = "act"
)

// BaseMsg is the common envelope used to dispatch on message type.
type BaseMsg struct {
	Type string `json:"type"`
}

// HelloMsg opens a policy connection.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PolicyName      string `json:"policy_name,omitempty"`
}

// WelcomeMsg acknowledges a policy connection and pins the vector sizes.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObsSize         int    `json:"obs_size"`
	ActSize         int    `json:"act_size"`
}

// ObsMsg delivers one observation with the reward accumulated since the
// previous delivery. Done marks the final delivery of an episode.
type ObsMsg struct {
	Type    string    `json:"type"`
	Episode int       `json:"episode"`
	Step    int       `json:"step"`
	Obs     []float64 `json:"obs"`
	Reward  float64   `json:"reward"`
	Done    bool      `json:"done"`
}

// ActMsg carries the policy's action for the last delivered observation.
type ActMsg struct {
	Type   string    `json:"type"`
	Action []float64 `json:"action"`
}

// DecodeBase extracts the message envelope.
func DecodeBase(b []byte) (BaseMsg, error) {
	var base BaseMsg
	if err := json.Unmarshal(b, &base); err != nil {
		return BaseMsg{}, fmt.Errorf("decoding message envelope: %w", err)
	}
	if base.Type == "" {
		return BaseMsg{}, fmt.Errorf("message missing type")
	}
	return base, nil
}
