package flags

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nojima/restfetch/exchange"
	"github.com/nojima/restfetch/input"
	"github.com/nojima/restfetch/output"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

type FlagSet interface {
	Args() []string
	PrintUsage(w io.Writer)
}

type OptionSet struct {
	InputOptions    input.ArgOptions
	ExchangeOptions exchange.Options
	OutputOptions   output.Options

	// RequestOptions is the option bag given with --options. It is nil
	// when the flag is absent.
	RequestOptions *input.Options
	Credentials    exchange.Credentials

	Debug         bool
	PrintVersion  bool
	PrintLicenses bool
}

type terminalInfo struct {
	stdinIsTerminal  bool
	stdoutIsTerminal bool
}

// Parse parses command line flags. args[0] is the program name.
func Parse(args []string) (FlagSet, *OptionSet, error) {
	_, flagSet, optionSet, err := parse(args, terminalInfo{
		stdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		stdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	})
	if err != nil {
		return flagSet, nil, err
	}
	return flagSet, optionSet, nil
}

func parse(args []string, terminal terminalInfo) ([]string, FlagSet, *OptionSet, error) {
	inputOptions := input.ArgOptions{}
	outputOptions := output.Options{}
	exchangeOptions := exchange.Options{}
	optionSet := &OptionSet{}
	var ignoreStdin, verbose, verify, pretty bool
	printFlag := "\000" // "\000" is a special value that indicates user did not specified --print
	timeout := "30s"
	var authFlag, credentialsFlag, optionsFlag string
	verify = true

	flagSet := getopt.New()
	flagSet.SetParameters("[METHOD] URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (HBhb)")
	flagSet.BoolVarLong(&verbose, "verbose", 'v', "print the request as well as the response")
	flagSet.BoolVarLong(&optionSet.Debug, "debug", 0, "log requests and responses to stderr")
	flagSet.BoolVarLong(&ignoreStdin, "ignore-stdin", 0, "do not attempt to read stdin")
	flagSet.StringVarLong(&timeout, "timeout", 0, "Timeout seconds that you allow the whole operation to take")
	flagSet.StringVarLong(&authFlag, "auth", 'a', "colon-separated username and password for authentication")
	flagSet.BoolVarLong(&exchangeOptions.FollowRedirects, "follow", 'F', "follow 30x Location redirects")
	flagSet.BoolVarLong(&verify, "verify", 0, "verify the host's SSL certificate (--verify=false to skip)")
	flagSet.BoolVarLong(&exchangeOptions.ForceHTTP1, "http1", 0, "force HTTP/1.1 protocol")
	flagSet.StringVarLong(&exchangeOptions.BaseURL, "base-url", 0, "resolve relative URLs against this URL")
	flagSet.BoolVarLong(&exchangeOptions.Session, "session", 0, "keep cookies between requests")
	flagSet.StringVarLong(&credentialsFlag, "credentials", 0, "cookie policy: omit, same-origin or include")
	flagSet.StringVarLong(&optionsFlag, "options", 0, "request options as a JSON object")
	flagSet.BoolVarLong(&pretty, "pretty", 0, "format the response even when stdout is not a terminal")
	flagSet.BoolVarLong(&outputOptions.Download, "download", 'd', "save the response payload to a file named after the URL")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "save the response payload to FILE", "FILE")
	flagSet.BoolVarLong(&outputOptions.Overwrite, "overwrite", 0, "overwrite the file given with --output")
	flagSet.BoolVarLong(&optionSet.PrintVersion, "version", 0, "print version and exit")
	flagSet.BoolVarLong(&optionSet.PrintLicenses, "licenses", 0, "print licenses and exit")
	if err := flagSet.Getopt(args, nil); err != nil {
		return nil, flagSet, nil, err
	}

	// Check stdin
	if !ignoreStdin && !terminal.stdinIsTerminal {
		inputOptions.ReadStdin = true
	}
	inputOptions.KeepRelativeURL = exchangeOptions.BaseURL != ""

	// Parse --print
	if err := parsePrintFlag(printFlag, verbose, terminal, &outputOptions); err != nil {
		return nil, flagSet, nil, err
	}

	// Parse --timeout
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, flagSet, nil, err
	}
	exchangeOptions.Timeout = d

	// Parse --auth
	if authFlag != "" {
		auth, err := parseAuth(authFlag)
		if err != nil {
			return nil, flagSet, nil, err
		}
		exchangeOptions.Auth = *auth
	}

	exchangeOptions.SkipVerify = !verify

	// Parse --credentials
	if credentialsFlag != "" {
		c, err := exchange.ParseCredentials(credentialsFlag)
		if err != nil {
			return nil, flagSet, nil, err
		}
		optionSet.Credentials = c
	}

	// Parse --options
	if optionsFlag != "" {
		o, err := input.DecodeOptionsJSON(optionsFlag)
		if err != nil {
			return nil, flagSet, nil, errors.Wrap(err, "parsing --options")
		}
		// URL and method are positional arguments.
		if o.URL != "" || o.Type != "" {
			return nil, flagSet, nil, errors.New("--options must not set url or type; give them as arguments")
		}
		optionSet.RequestOptions = o
	}

	// Color
	outputOptions.EnableFormat = pretty || terminal.stdoutIsTerminal
	outputOptions.EnableColor = terminal.stdoutIsTerminal

	optionSet.InputOptions = inputOptions
	optionSet.ExchangeOptions = exchangeOptions
	optionSet.OutputOptions = outputOptions
	return flagSet.Args(), flagSet, optionSet, nil
}

func parsePrintFlag(printFlag string, verbose bool, terminal terminalInfo, outputOptions *output.Options) error {
	if printFlag == "\000" {
		// --print is not specified
		if verbose {
			outputOptions.PrintRequestHeader = true
			outputOptions.PrintRequestBody = true
		}
		if terminal.stdoutIsTerminal || verbose {
			outputOptions.PrintResponseHeader = true
		}
		outputOptions.PrintResponseBody = true
		return nil
	}
	for _, c := range printFlag {
		switch c {
		case 'H':
			outputOptions.PrintRequestHeader = true
		case 'B':
			outputOptions.PrintRequestBody = true
		case 'h':
			outputOptions.PrintResponseHeader = true
		case 'b':
			outputOptions.PrintResponseBody = true
		default:
			return errors.Errorf("Invalid char in --print value (must be consist of HBhb): %c", c)
		}
	}
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}

func parseAuth(authFlag string) (*exchange.AuthOptions, error) {
	// Password prompt is needed when --auth does not contain a password
	if !strings.Contains(authFlag, ":") {
		password, err := askPassword(authFlag)
		if err != nil {
			return nil, err
		}
		return &exchange.AuthOptions{
			Enabled:  true,
			UserName: authFlag,
			Password: password,
		}, nil
	}

	parts := strings.SplitN(authFlag, ":", 2)
	return &exchange.AuthOptions{
		Enabled:  true,
		UserName: parts[0],
		Password: parts[1],
	}, nil
}
