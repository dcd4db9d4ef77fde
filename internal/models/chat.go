package models

// ChatMessage is the only payload carried by the chat relay.
type ChatMessage struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
