package input

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// DecodeOptions converts a loosely typed option bag into Options.
// Header values that are not strings are formatted with their default
// representation; unknown keys are rejected.
func DecodeOptions(bag map[string]interface{}) (*Options, error) {
	var options Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &options,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating option decoder")
	}
	if err := decoder.Decode(bag); err != nil {
		return nil, errors.Wrap(err, "decoding option bag")
	}
	return &options, nil
}

// DecodeOptionsJSON parses a JSON object and decodes it with DecodeOptions.
func DecodeOptionsJSON(s string) (*Options, error) {
	var bag map[string]interface{}
	if err := json.Unmarshal([]byte(s), &bag); err != nil {
		return nil, errors.Wrap(err, "parsing option bag as JSON")
	}
	return DecodeOptions(bag)
}
