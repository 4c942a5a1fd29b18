package models

import "github.com/Yash-SD99/Echoing-Hearts/pkg/reveal"

// ProgressView is the reveal screen for one participant: how far the
// conversation has come and what of the peer's profile is visible.
type ProgressView struct {
	ConversationID string                             `json:"conversation_id"`
	Level          int                                `json:"level"`
	MaxLevel       int                                `json:"max_level"`
	MyCount        int                                `json:"my_count"`
	PeerCount      int                                `json:"peer_count"`
	EffectiveCount int                                `json:"effective_count"`
	NextThreshold  *int                               `json:"next_threshold"`
	Peer           PeerCard                           `json:"peer"`
	Blocks         [reveal.MaxLevel]reveal.Descriptor `json:"blocks"`
}
