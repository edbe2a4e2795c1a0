package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/nojima/restfetch/exchange"
	"github.com/pkg/errors"
)

const defaultFilename = "response.json"

var indexSuffix = regexp.MustCompile(`\.(\d+)$`)

// FileWriter saves a resolved payload to disk instead of the terminal.
type FileWriter struct {
	fullPath string
}

func NewFileWriter(u *url.URL, options *Options) *FileWriter {
	var fullPath string

	if options.OutputFile == "" {
		name := path.Base(u.Path)
		if name == "/" || name == "." || name == "" {
			name = defaultFilename
		}
		fullPath = fmt.Sprintf("./%s", name)
	} else {
		fullPath = options.OutputFile
	}

	if !options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}

	return &FileWriter{
		fullPath: fullPath,
	}
}

func makeNonOverlappingFilename(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	newPath := indexSuffix.ReplaceAllStringFunc(path, func(index string) string {
		i, _ := strconv.Atoi(strings.TrimPrefix(index, "."))
		return fmt.Sprintf(".%d", i+1)
	})
	if path == newPath {
		newPath = fmt.Sprintf("%s.%d", path, 1)
	}
	return makeNonOverlappingFilename(newPath)
}

// Save writes payload to the file and reports the written size to status.
// Raw text is written as is; anything else is written as indented JSON.
func (f *FileWriter) Save(payload interface{}, status io.Writer) error {
	var content []byte
	switch p := payload.(type) {
	case string:
		content = []byte(p)
	default:
		if exchange.IsNoContent(payload) {
			break
		}
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "    ")
		if err := encoder.Encode(payload); err != nil {
			return errors.Wrap(err, "encoding payload")
		}
		content = buf.Bytes()
	}

	if err := ioutil.WriteFile(f.fullPath, content, 0644); err != nil {
		return errors.Wrapf(err, "writing payload to %s", f.fullPath)
	}
	if status != nil {
		fmt.Fprintf(status, "Saved %s to %s\n", bytefmt.ByteSize(uint64(len(content))), f.Filename())
	}
	return nil
}

func (f *FileWriter) Path() string {
	return f.fullPath
}

func (f *FileWriter) Filename() string {
	return filepath.Base(f.fullPath)
}
