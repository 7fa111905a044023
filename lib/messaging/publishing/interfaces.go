package publishing

// MessagePublisher interface for sending messages
type MessagePublisher interface {
	PublishMessage(route string, body any) error
	PublishRawMessage(route string, body []byte) error
}

// Message is one published event. Body is JSON.
type Message struct {
	Route string
	Body  []byte
}
