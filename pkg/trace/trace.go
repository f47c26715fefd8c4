// Package trace configures logging from the ADB_TRACE environment
// variable, the way the adb tools do: a comma- or space-separated list of
// tags ("auth", "pairing", "mdns", "wire", ...) enables trace-level output
// for those scopes, and the special values "1" and "all" enable everything.
//
//	ADB_TRACE=auth,pairing adbpair client ...
//
// The result is a pion logging factory, so any package taking a
// logging.LoggerFactory can be wired to it.
package trace

import (
	"os"
	"strings"

	"github.com/pion/logging"
)

// EnvTrace is the environment variable holding the trace setting.
const EnvTrace = "ADB_TRACE"

// NewLoggerFactory builds a logger factory from the ADB_TRACE environment
// variable.
func NewLoggerFactory() *logging.DefaultLoggerFactory {
	return NewLoggerFactoryFrom(os.Getenv(EnvTrace))
}

// NewLoggerFactoryFrom builds a logger factory from a trace setting string.
//
// An empty setting keeps the factory quiet (warnings and errors only).
// Otherwise the default level is info and every listed tag gets trace-level
// output for its scope; "1" or "all" raise the default itself to trace.
func NewLoggerFactoryFrom(setting string) *logging.DefaultLoggerFactory {
	factory := &logging.DefaultLoggerFactory{
		Writer:          os.Stderr,
		DefaultLogLevel: logging.LogLevelWarn,
		ScopeLevels:     make(map[string]logging.LogLevel),
	}
	if setting == "" {
		return factory
	}

	factory.DefaultLogLevel = logging.LogLevelInfo
	for _, tag := range splitTags(setting) {
		if tag == "1" || tag == "all" {
			factory.DefaultLogLevel = logging.LogLevelTrace
			continue
		}
		factory.ScopeLevels[tag] = logging.LogLevelTrace
	}

	return factory
}

// splitTags splits a trace setting on commas and spaces, dropping empty
// entries and normalizing case.
func splitTags(setting string) []string {
	fields := strings.FieldsFunc(setting, func(r rune) bool {
		return r == ',' || r == ' '
	})

	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tags = append(tags, strings.ToLower(f))
	}
	return tags
}
