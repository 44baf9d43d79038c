// Package artifact loads the exported classifier and label encoder that the
// prediction pipeline treats as opaque, pre-trained artifacts.
//
// Artifacts are JSON documents, optionally compressed (".gz" or ".zst"), and
// are validated against embedded JSON Schemas before they are decoded.
package artifact

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	forestSchemaName  = "forest"
	encoderSchemaName = "encoder"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// schemaFor returns the compiled schema for an artifact kind.
func schemaFor(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*jsonschema.Schema, 2)
		c := jsonschema.NewCompiler()
		for _, n := range []string{forestSchemaName, encoderSchemaName} {
			raw, err := schemaFS.ReadFile("schemas/" + n + ".schema.json")
			if err != nil {
				compileErr = fmt.Errorf("read schema %q: %w", n, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("parse schema %q: %w", n, err)
				return
			}
			url := "schema://" + n + ".json"
			if err := c.AddResource(url, doc); err != nil {
				compileErr = fmt.Errorf("add schema %q: %w", n, err)
				return
			}
			s, err := c.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %q: %w", n, err)
				return
			}
			compiled[n] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return compiled[name], nil
}

// readFile reads path, transparently decompressing by extension.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return decompress(f, path)
}

func decompress(r io.Reader, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(r)
	}
}

// decodeDocument validates raw against the named schema and decodes it into v.
func decodeDocument(raw []byte, schemaName string, v any) error {
	s, err := schemaFor(schemaName)
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
