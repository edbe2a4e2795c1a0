package restfetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/nojima/restfetch/adapter"
	"github.com/nojima/restfetch/exchange"
	"github.com/nojima/restfetch/flags"
	"github.com/nojima/restfetch/input"
	"github.com/nojima/restfetch/output"
	"github.com/nojima/restfetch/version"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func Main() error {
	// Parse flags
	flagSet, optionSet, err := flags.Parse(os.Args)
	if err != nil {
		if flagSet != nil {
			flagSet.PrintUsage(os.Stderr)
		}
		return err
	}
	if optionSet.PrintVersion {
		fmt.Printf("restfetch %s\n", version.Current())
		return nil
	}
	if optionSet.PrintLicenses {
		version.PrintLicenses(os.Stdout)
		return nil
	}

	logger := newLogger(os.Stderr, optionSet.Debug)

	// Parse positional arguments
	req, err := input.ParseArgs(flagSet.Args(), os.Stdin, &optionSet.InputOptions)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		flagSet.PrintUsage(os.Stderr)
		return err
	}
	if err != nil {
		return err
	}
	options := mergeOptions(optionSet.RequestOptions, &req.Options, optionSet.Credentials)

	transport, err := exchange.NewHTTPTransport(&optionSet.ExchangeOptions, logger)
	if err != nil {
		return err
	}
	recorder := &recordingTransport{transport: transport}
	host := &adapter.RESTHost{
		DefaultHeaders: map[string]string{"Accept": "application/json"},
	}
	a := adapter.New(host, recorder, logger)

	// Send request and receive the payload
	payload, ajaxErr := a.Ajax(context.Background(), req.URL, req.Method, options)

	// Print exchange
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()
	printer := output.NewPrinter(output.PrinterConfig{
		Writer:      writer,
		EnableColor: optionSet.OutputOptions.EnableColor,
	}, &optionSet.OutputOptions)

	if err := printRequest(printer, recorder, &optionSet.OutputOptions); err != nil {
		return err
	}
	if err := printResponse(printer, recorder, &optionSet.OutputOptions); err != nil {
		return err
	}
	if ajaxErr != nil {
		return ajaxErr
	}

	if optionSet.OutputOptions.SavesToFile() {
		writer.Flush()
		u, err := url.Parse(recorder.requestURL())
		if err != nil {
			return errors.Wrap(err, "parsing request URL")
		}
		return output.NewFileWriter(u, &optionSet.OutputOptions).Save(payload, os.Stderr)
	}
	if optionSet.OutputOptions.PrintResponseBody {
		if err := printer.PrintPayload(payload); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// mergeOptions lays the command line request over the --options bag.
// Items given on the command line win over keys of the bag.
func mergeOptions(bag *input.Options, args *input.Options, credentials exchange.Credentials) *input.Options {
	options := bag.Clone()
	if options.Headers == nil && len(args.Headers) > 0 {
		options.Headers = make(map[string]string, len(args.Headers))
	}
	for name, value := range args.Headers {
		options.Headers[name] = value
	}
	if options.Data == nil && args.Data != nil {
		options.Data = make(map[string]interface{}, len(args.Data))
	}
	for name, value := range args.Data {
		options.Data[name] = value
	}
	if args.Body != "" {
		options.Body = args.Body
	}
	if credentials != "" {
		options.Credentials = string(credentials)
	}
	return options
}

// recordingTransport remembers the last descriptor and response so that
// they can be printed after the adapter has consumed the body.
type recordingTransport struct {
	transport  exchange.Transport
	descriptor *exchange.Descriptor
	response   *http.Response
}

func (r *recordingTransport) Fetch(ctx context.Context, url string, d *exchange.Descriptor) (*http.Response, error) {
	r.descriptor = d
	resp, err := r.transport.Fetch(ctx, url, d)
	r.response = resp
	return resp, err
}

func (r *recordingTransport) requestURL() string {
	if r.response != nil && r.response.Request != nil {
		return r.response.Request.URL.String()
	}
	if r.descriptor != nil {
		return r.descriptor.URL
	}
	return ""
}

func printRequest(printer output.Printer, r *recordingTransport, options *output.Options) error {
	if r.descriptor == nil {
		return nil
	}
	if options.PrintRequestHeader {
		method := string(r.descriptor.Method)
		header := r.descriptor.Headers
		if r.response != nil && r.response.Request != nil {
			method = r.response.Request.Method
			header = exchange.NormalizeHeaders(r.response.Request.Header)
		}
		if err := printer.PrintRequestLine(method, r.requestURL()); err != nil {
			return err
		}
		if err := printer.PrintHeader(header); err != nil {
			return err
		}
	}
	if options.PrintRequestBody {
		if err := printer.PrintBody(r.descriptor.Body); err != nil {
			return err
		}
	}
	return nil
}

func printResponse(printer output.Printer, r *recordingTransport, options *output.Options) error {
	if r.response == nil || !options.PrintResponseHeader {
		return nil
	}
	resp := r.response
	if err := printer.PrintStatusLine(resp.Proto, resp.Status, resp.StatusCode); err != nil {
		return err
	}
	return printer.PrintHeader(exchange.NormalizeHeaders(resp.Header))
}
