package domain

import "time"

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageKind distinguishes plain text turns from look-recommendation turns.
type MessageKind string

const (
	KindText MessageKind = "text"
	KindLook MessageKind = "look"
)

// Message is one entry in the conversation transcript. Text messages are
// immutable once appended; look messages grow by appending further
// LookBatch entries until the backend reports none remaining.
type Message struct {
	ID                string      `json:"id"`
	Text              string      `json:"text,omitempty"`
	Sender            Sender      `json:"sender"`
	Timestamp         time.Time   `json:"timestamp"`
	Kind              MessageKind `json:"type"`
	Images            []string    `json:"images,omitempty"`
	Looks             []LookBatch `json:"looks,omitempty"`
	ExpectedLookCount int         `json:"expectedLooksCount,omitempty"`
}

// QuickReply is a suggested answer derived from the backend's answers list.
type QuickReply struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
