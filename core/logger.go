package core

// Logger is any service that can log app events.
// expected args fmt: key/value pairs or bare values appended to the message.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
