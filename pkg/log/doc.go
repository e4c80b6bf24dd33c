// Package log provides named loggers for stusearch components.
//
// Each component asks for its own logger once and keeps it:
//
//	var logger = log.ForService("backend")
//
//	logger.Infof("GET %s -> %d", url, status)
//	logger.Debugf("raw body: %s", body) // only with debug enabled
//
// Lines are written through a shared logrus logger with a text formatter, so
// every line carries a timestamp, a level, a "service" field and a
// "[name>]" prefix in the message.
//
// Debug output can be enabled globally (SetGlobalDebug, wired to the
// --debug flag) or for a single service (EnableDebugFor).
//
// The package name collides with the standard library "log"; alias one of
// them when both are needed.
package log
