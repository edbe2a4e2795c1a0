package output

import (
	"io"
	"sort"
)

// Printer writes one exchange: the request that was sent and the
// response the adapter produced.
type Printer interface {
	PrintRequestLine(method, url string) error
	PrintStatusLine(proto, status string, statusCode int) error
	PrintHeader(header map[string]string) error
	PrintBody(body string) error
	PrintPayload(payload interface{}) error
}

type PrinterConfig struct {
	Writer      io.Writer
	EnableColor bool
}

// NewPrinter returns a pretty printer when formatting is enabled and a
// plain one otherwise.
func NewPrinter(config PrinterConfig, options *Options) Printer {
	if options.EnableFormat {
		return NewPrettyPrinter(config)
	}
	return NewPlainPrinter(config.Writer)
}

func sortedNames(header map[string]string) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
