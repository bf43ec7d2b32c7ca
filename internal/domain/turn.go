package domain

import (
	"fmt"
)

// Agent identifies one of the two AI roles in a training session.
type Agent string

const (
	// AgentFacilitator guides both participants through the methodology.
	AgentFacilitator Agent = "facilitator"
	// AgentPartner explores the collaboration alongside the human.
	AgentPartner Agent = "partner"
)

// Agents returns both agent identities, facilitator first.
func Agents() []Agent {
	return []Agent{AgentFacilitator, AgentPartner}
}

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Agent   Agent  `json:"agent,omitempty"`
}

// Validate checks that the turn can be forwarded to the completion service.
// Content may be empty: an agent reply is kept verbatim, even when blank.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown turn role %q", t.Role)
	}
}

// UserTurn builds a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AgentTurn builds an assistant turn tagged with the agent that produced it.
func AgentTurn(agent Agent, content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, Agent: agent}
}
