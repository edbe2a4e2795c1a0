package output

type Options struct {
	PrintRequestHeader  bool
	PrintRequestBody    bool
	PrintResponseHeader bool
	PrintResponseBody   bool

	EnableFormat bool
	EnableColor  bool

	// Download saves the payload to a file named after the URL unless
	// OutputFile is given.
	Download   bool
	OutputFile string
	Overwrite  bool
}

// SavesToFile reports whether the payload goes to a file instead of the
// terminal.
func (o *Options) SavesToFile() bool {
	return o.Download || o.OutputFile != ""
}
