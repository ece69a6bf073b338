package main

import (
	stdlog "log"

	"github.com/go-log/log"
)

func init() {
	stdlog.SetFlags(stdlog.LstdFlags | stdlog.Lshortfile)
}

// logLogger backs the go-log facade with the standard log package.
type logLogger struct{}

func (l *logLogger) Log(v ...interface{}) {
	stdlog.Println(v...)
}

func (l *logLogger) Logf(format string, v ...interface{}) {
	stdlog.Printf(format, v...)
}

// nopLogger discards the log outputs.
type nopLogger struct{}

func (l *nopLogger) Log(v ...interface{})                 {}
func (l *nopLogger) Logf(format string, v ...interface{}) {}

func initLogger(verbose bool) {
	if verbose {
		log.DefaultLogger = &logLogger{}
	} else {
		log.DefaultLogger = &nopLogger{}
	}
}
