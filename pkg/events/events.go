package events

type Level uint8

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Warn:
		return "W"
	case Error:
		return "E"
	default:
		return "X"
	}
}

// Event is a single report from a build step.
type Event struct {
	Level   Level
	Step    string
	Source  string
	Message string
	Error   error
}

type Handler interface {
	Handle(event Event)
}
