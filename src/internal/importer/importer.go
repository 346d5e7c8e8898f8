// Package importer defines the boundary to the parser collaborators that
// turn an external source token into entry records. The disambiguation,
// store and history machinery consume their output uniformly.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"litdb/src/internal/schema"
)

// Importer turns a source token (file path, identifier string) into zero or
// more entries.
type Importer interface {
	Import(source string) ([]*schema.Entry, error)
}

// YAML imports entries from a multi-document YAML file in the library's own
// entry format.
type YAML struct{}

// Import reads all entry documents from the file at source.
func (YAML) Import(source string) ([]*schema.Entry, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*schema.Entry
	dec := yaml.NewDecoder(f)
	for {
		var e schema.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("malformed entry document in %s: %w", source, err)
		}
		out = append(out, &e)
	}
	return out, nil
}
