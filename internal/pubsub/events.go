package pubsub

import "time"

// PeerEvent describes a relay connection coming or going.
type PeerEvent struct {
	PeerID     string    `json:"peerID"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RejectionEvent describes an inbound frame the gate refused to broadcast.
type RejectionEvent struct {
	PeerID    string    `json:"peerID"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	// TopicPeerConnected is published once a connection has joined the hub.
	TopicPeerConnected = NewEvent[PeerEvent]("relay.peer.connected")

	// TopicPeerDisconnected is published after both relay loops have stopped.
	TopicPeerDisconnected = NewEvent[PeerEvent]("relay.peer.disconnected")

	// TopicCommitmentRejected is published for every frame dropped by the gate.
	TopicCommitmentRejected = NewEvent[RejectionEvent]("chat.commitment.rejected")
)
