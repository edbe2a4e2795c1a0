package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/nojima/restfetch/exchange"
	"github.com/pkg/errors"
)

const indentWidth = 4

type PrettyPrinter struct {
	writer        io.Writer
	aurora        aurora.Aurora
	headerPalette *HeaderPalette
	jsonPalette   *JSONPalette
}

type PrettyPrinterConfig = PrinterConfig

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Proto          aurora.Color
	SuccessStatus  aurora.Color
	ErrorStatus    aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.GreenFg | aurora.BoldFm,
	URL:            aurora.CyanFg,
	Proto:          aurora.BlueFg,
	SuccessStatus:  aurora.BrownFg | aurora.BoldFm,
	ErrorStatus:    aurora.RedFg | aurora.BoldFm,
	FieldName:      aurora.GrayFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.GrayFg,
}

type JSONPalette struct {
	Name    aurora.Color
	String  aurora.Color
	Number  aurora.Color
	Boolean aurora.Color
	Null    aurora.Color
	Symbol  aurora.Color
}

var defaultJSONPalette = JSONPalette{
	Name:    aurora.BlueFg,
	String:  aurora.BrownFg,
	Number:  aurora.CyanFg,
	Boolean: aurora.MagentaFg,
	Null:    aurora.MagentaFg,
	Symbol:  aurora.GrayFg,
}

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		aurora:        aurora.NewAurora(config.EnableColor),
		headerPalette: &defaultHeaderPalette,
		jsonPalette:   &defaultJSONPalette,
	}
}

func (p *PrettyPrinter) PrintRequestLine(method, url string) error {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(method, p.headerPalette.Method),
		p.aurora.Colorize(url, p.headerPalette.URL))
	return nil
}

func (p *PrettyPrinter) PrintStatusLine(proto, status string, statusCode int) error {
	statusColor := p.headerPalette.SuccessStatus
	if statusCode >= 400 {
		statusColor = p.headerPalette.ErrorStatus
	}
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(proto, p.headerPalette.Proto),
		p.aurora.Colorize(status, statusColor))
	return nil
}

func (p *PrettyPrinter) PrintHeader(header map[string]string) error {
	for _, name := range sortedNames(header) {
		fmt.Fprintf(p.writer, "%s%s %s\n",
			p.aurora.Colorize(name, p.headerPalette.FieldName),
			p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
			p.aurora.Colorize(header[name], p.headerPalette.FieldValue))
	}
	fmt.Fprintln(p.writer)
	return nil
}

// PrintBody prints a request body, formatted when it is JSON.
func (p *PrettyPrinter) PrintBody(body string) error {
	if body == "" {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		fmt.Fprintln(p.writer, body)
		return nil
	}
	return p.PrintPayload(v)
}

func (p *PrettyPrinter) PrintPayload(payload interface{}) error {
	if exchange.IsNoContent(payload) {
		return nil
	}
	if s, ok := payload.(string); ok {
		_, err := io.WriteString(p.writer, s)
		return errors.Wrap(err, "printing payload")
	}
	var buf bytes.Buffer
	if err := p.writeValue(&buf, payload, 0); err != nil {
		return err
	}
	buf.WriteString("\n")
	_, err := p.writer.Write(buf.Bytes())
	return errors.Wrap(err, "printing payload")
}

func (p *PrettyPrinter) writeValue(buf *bytes.Buffer, v interface{}, depth int) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString(p.aurora.Colorize("null", p.jsonPalette.Null).String())
	case bool:
		buf.WriteString(p.aurora.Colorize(fmt.Sprint(x), p.jsonPalette.Boolean).String())
	case string:
		s, err := encodeString(x)
		if err != nil {
			return err
		}
		buf.WriteString(p.aurora.Colorize(s, p.jsonPalette.String).String())
	case map[string]interface{}:
		return p.writeObject(buf, x, depth)
	case []interface{}:
		return p.writeArray(buf, x, depth)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		buf.WriteString(p.aurora.Colorize(string(b), p.jsonPalette.Number).String())
	}
	return nil
}

func (p *PrettyPrinter) writeObject(buf *bytes.Buffer, obj map[string]interface{}, depth int) error {
	if len(obj) == 0 {
		buf.WriteString(p.symbol("{}"))
		return nil
	}
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	buf.WriteString(p.symbol("{"))
	buf.WriteString("\n")
	for i, name := range names {
		buf.WriteString(indent(depth + 1))
		s, err := encodeString(name)
		if err != nil {
			return err
		}
		buf.WriteString(p.aurora.Colorize(s, p.jsonPalette.Name).String())
		buf.WriteString(p.symbol(":"))
		buf.WriteString(" ")
		if err := p.writeValue(buf, obj[name], depth+1); err != nil {
			return err
		}
		if i < len(names)-1 {
			buf.WriteString(p.symbol(","))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(indent(depth))
	buf.WriteString(p.symbol("}"))
	return nil
}

func (p *PrettyPrinter) writeArray(buf *bytes.Buffer, arr []interface{}, depth int) error {
	if len(arr) == 0 {
		buf.WriteString(p.symbol("[]"))
		return nil
	}
	buf.WriteString(p.symbol("["))
	buf.WriteString("\n")
	for i, elem := range arr {
		buf.WriteString(indent(depth + 1))
		if err := p.writeValue(buf, elem, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			buf.WriteString(p.symbol(","))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(indent(depth))
	buf.WriteString(p.symbol("]"))
	return nil
}

func (p *PrettyPrinter) symbol(s string) string {
	return p.aurora.Colorize(s, p.jsonPalette.Symbol).String()
}

func indent(depth int) string {
	return strings.Repeat(" ", depth*indentWidth)
}

// encodeString quotes s as JSON without escaping HTML characters.
func encodeString(s string) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return "", errors.Wrap(err, "encoding JSON string")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
