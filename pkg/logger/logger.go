package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the leveled key/value logger used across the service
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})

	// Named returns a logger that prefixes every message with the component name
	Named(component string) Logger
}

type logLevel int

const (
	debugLevel logLevel = iota
	infoLevel
	warnLevel
	errorLevel
)

type stdLogger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	level       logLevel
	component   string
}

// NewLogger creates a new logger with the specified level
func NewLogger(level string) Logger {
	var l logLevel

	switch strings.ToLower(level) {
	case "debug":
		l = debugLevel
	case "info":
		l = infoLevel
	case "warn":
		l = warnLevel
	case "error":
		l = errorLevel
	default:
		l = infoLevel
	}

	return &stdLogger{
		debugLogger: log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		infoLogger:  log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime),
		warnLogger:  log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime),
		errorLogger: log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		level:       l,
	}
}

func (l *stdLogger) Named(component string) Logger {
	clone := *l

	if l.component != "" {
		clone.component = l.component + "." + component
	} else {
		clone.component = component
	}

	return &clone
}

func (l *stdLogger) Debug(msg string, keyvals ...interface{}) {
	if l.level <= debugLevel {
		l.debugLogger.Println(l.formatMsg(msg, keyvals...))
	}
}

func (l *stdLogger) Info(msg string, keyvals ...interface{}) {
	if l.level <= infoLevel {
		l.infoLogger.Println(l.formatMsg(msg, keyvals...))
	}
}

func (l *stdLogger) Warn(msg string, keyvals ...interface{}) {
	if l.level <= warnLevel {
		l.warnLogger.Println(l.formatMsg(msg, keyvals...))
	}
}

func (l *stdLogger) Error(msg string, keyvals ...interface{}) {
	if l.level <= errorLevel {
		l.errorLogger.Println(l.formatMsg(msg, keyvals...))
	}
}

func (l *stdLogger) formatMsg(msg string, keyvals ...interface{}) string {
	formattedMsg := msg

	if l.component != "" {
		formattedMsg = "[" + l.component + "] " + msg
	}

	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		value := "missing"

		if i+1 < len(keyvals) {
			value = fmt.Sprintf("%v", keyvals[i+1])
		}

		formattedMsg += " " + key + "=" + value
	}

	return formattedMsg
}
