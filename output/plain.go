package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nojima/restfetch/exchange"
	"github.com/pkg/errors"
)

type PlainPrinter struct {
	writer io.Writer
}

func NewPlainPrinter(writer io.Writer) Printer {
	return &PlainPrinter{
		writer: writer,
	}
}

func (p *PlainPrinter) PrintRequestLine(method, url string) error {
	fmt.Fprintf(p.writer, "%s %s\n", method, url)
	return nil
}

func (p *PlainPrinter) PrintStatusLine(proto, status string, statusCode int) error {
	fmt.Fprintf(p.writer, "%s %s\n", proto, status)
	return nil
}

func (p *PlainPrinter) PrintHeader(header map[string]string) error {
	for _, name := range sortedNames(header) {
		fmt.Fprintf(p.writer, "%s: %s\n", name, header[name])
	}
	fmt.Fprintln(p.writer)
	return nil
}

func (p *PlainPrinter) PrintBody(body string) error {
	if body == "" {
		return nil
	}
	fmt.Fprintln(p.writer, body)
	return nil
}

func (p *PlainPrinter) PrintPayload(payload interface{}) error {
	if exchange.IsNoContent(payload) {
		return nil
	}
	if s, ok := payload.(string); ok {
		_, err := io.WriteString(p.writer, s)
		return errors.Wrap(err, "printing payload")
	}
	encoder := json.NewEncoder(p.writer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}
