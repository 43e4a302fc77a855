package reader

import (
	"os"
	"path/filepath"

	"github.com/coupergateway/authproxy/errors"
)

// ReadFromAttrFile returns either the inline value or the content of the
// file at path. Exactly one of both must be given.
func ReadFromAttrFile(context, value, path string) ([]byte, error) {
	readErr := errors.Configuration.Label(context)
	switch {
	case value != "" && path != "":
		return nil, readErr.Message("value and file are mutually exclusive")
	case path != "":
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, readErr.With(err)
		}
		b, err := os.ReadFile(absPath)
		if err != nil {
			return nil, readErr.Message("read error").With(err)
		}
		if len(b) == 0 {
			return nil, readErr.Messagef("empty file: %s", path)
		}
		return b, nil
	case value != "":
		return []byte(value), nil
	default:
		return nil, readErr.Message("empty value")
	}
}
