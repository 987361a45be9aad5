package events

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(event Event)

func (h HandlerFunc) Handle(event Event) {
	h(event)
}

// Discard drops every event.
var Discard Handler = HandlerFunc(func(Event) {})
