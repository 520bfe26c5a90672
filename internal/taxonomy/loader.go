package taxonomy

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTaxonomyLoad is matched by every *TaxonomyLoadError via errors.Is.
var ErrTaxonomyLoad = errors.New("taxonomy load failed")

// TaxonomyLoadError reports a taxonomy source that could not be read or
// parsed into the node structure. No partial index is ever built from it.
type TaxonomyLoadError struct {
	Path string // empty when loaded from a reader
	Err  error
}

func (e *TaxonomyLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrTaxonomyLoad, e.Err)
	}
	return fmt.Sprintf("%v (%s): %v", ErrTaxonomyLoad, e.Path, e.Err)
}

func (e *TaxonomyLoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTaxonomyLoad) true for any TaxonomyLoadError.
func (e *TaxonomyLoadError) Is(target error) bool {
	return target == ErrTaxonomyLoad
}

// Load opens and parses the taxonomy JSON file at path. The file is closed
// before Load returns.
func Load(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TaxonomyLoadError{Path: path, Err: err}
	}
	defer f.Close()

	root, err := Parse(bufio.NewReader(f))
	if err != nil {
		var loadErr *TaxonomyLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &TaxonomyLoadError{Path: path, Err: err}
	}
	return root, nil
}

// Parse reads a taxonomy tree from r. The document must be a JSON object
// whose values are objects, recursively; an empty object marks a leaf.
// Key order is preserved. The returned root has an empty key.
func Parse(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &TaxonomyLoadError{Err: errors.New("empty document")}
		}
		return nil, &TaxonomyLoadError{Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &TaxonomyLoadError{Err: fmt.Errorf("root must be an object, got %v", tok)}
	}

	root := NewNode("")
	stack := []*Node{root}

	for len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, &TaxonomyLoadError{Err: err}
		}

		switch t := tok.(type) {
		case json.Delim:
			// Inside an object the decoder only yields keys or the closing brace.
			stack = stack[:len(stack)-1]

		case string:
			parent := stack[len(stack)-1]

			value, err := dec.Token()
			if err != nil {
				return nil, &TaxonomyLoadError{Err: fmt.Errorf("value for key %q: %w", t, err)}
			}
			if d, ok := value.(json.Delim); !ok || d != '{' {
				return nil, &TaxonomyLoadError{Err: fmt.Errorf("value for key %q must be an object, got %v", t, value)}
			}

			child := NewNode(t)
			parent.AddChild(child)
			stack = append(stack, child)

		default:
			return nil, &TaxonomyLoadError{Err: fmt.Errorf("unexpected token %v", tok)}
		}
	}

	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &TaxonomyLoadError{Err: err}
		}
		return nil, &TaxonomyLoadError{Err: fmt.Errorf("unexpected data after root object: %v", tok)}
	}

	return root, nil
}
