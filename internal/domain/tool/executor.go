package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
)

// Handler runs one tool. args has already been validated and defaulted against the tool's ParamSpecs.
type Handler func(ctx context.Context, args map[string]any) (Output, error)

// Output is what a handler produced: a JSON document, or a file written to disk.
type Output struct {
	JSON  json.RawMessage
	Saved *Saved
}

// Saved reports a binary payload streamed to Path.
type Saved struct {
	Kind  string
	Path  string
	Bytes int64
}

// destination is implemented by download inputs that carry an output path.
type destination interface {
	Destination() string
}

// decode converts the argument object into the typed input struct T.
// A value the struct cannot hold is reported as an *ArgumentError for that field.
func decode[T any](args map[string]any) (T, error) {
	var in T
	raw, err := json.Marshal(args)
	if err != nil {
		return in, &ArgumentError{Kind: ErrInvalidArgument, Field: "arguments", Want: "JSON-encodable"}
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return in, &ArgumentError{Kind: ErrInvalidArgument, Field: typeErr.Field, Want: kindPhrase(typeErr.Type)}
		}
		return in, &ArgumentError{Kind: ErrInvalidArgument, Field: "arguments", Want: "an object"}
	}
	return in, nil
}

func kindPhrase(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	}
	return "a " + t.String()
}

// jsonTool adapts a typed JSON operation into a Handler.
func jsonTool[T any](fn func(context.Context, T) (json.RawMessage, error)) Handler {
	return func(ctx context.Context, args map[string]any) (Output, error) {
		in, err := decode[T](args)
		if err != nil {
			return Output{}, err
		}
		raw, err := fn(ctx, in)
		if err != nil {
			return Output{}, err
		}
		return Output{JSON: raw}, nil
	}
}

// downloadTool adapts a typed streaming operation into a Handler that writes to the input's destination.
func downloadTool[T destination](kind string, fn func(context.Context, T, io.Writer) (int64, error)) Handler {
	return func(ctx context.Context, args map[string]any) (Output, error) {
		in, err := decode[T](args)
		if err != nil {
			return Output{}, err
		}
		path := in.Destination()
		n, err := saveTo(path, func(w io.Writer) (int64, error) {
			return fn(ctx, in, w)
		})
		if err != nil {
			return Output{}, err
		}
		return Output{Saved: &Saved{Kind: kind, Path: path, Bytes: n}}, nil
	}
}

// saveTo streams into a temp file next to path and renames it into place on success,
// so a failed or cancelled download never leaves a partial file at path.
// Missing parent directories are created.
func saveTo(path string, write func(io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	n, writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("close file: %w", closeErr)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return n, writeErr
	}

	// CreateTemp uses 0600; downloads get the usual file mode.
	_ = os.Chmod(tmpName, 0o644)
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return n, fmt.Errorf("write %q: %w", path, err)
	}
	return n, nil
}
