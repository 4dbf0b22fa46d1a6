package alloy

import (
	"bytes"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	path         string
	keys         map[string]struct{}
	expectingKey bool
	index        int
	lastKey      string
}

// DuplicateKeys scans JSON text and reports every object key that appears
// twice within the same object. Paths are dot paths relative to the scanned
// value. A syntax error stops the scan and is returned.
func DuplicateKeys(data []byte) (Issues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var issues Issues
	var stack []dupFrame

	// valuePath returns the path of the value about to be read in the
	// innermost container.
	valuePath := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			return childPath(top.path, strconv.Itoa(top.index))
		}
		return childPath(top.path, top.lastKey)
	}
	// consumed marks that a value has been read in the innermost container.
	consumed := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			top.index++
			return
		}
		top.expectingKey = true
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return issues, err
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{kind: kindObject, path: valuePath(), keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, dupFrame{kind: kindArray, path: valuePath()})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				consumed()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, ok := top.keys[v]; ok {
						issues = AppendIssues(issues, Issue{
							Code:   CodeDuplicateKey,
							Path:   childPath(top.path, v),
							Params: map[string]string{"key": v},
						})
					}
					top.keys[v] = struct{}{}
					top.lastKey = v
					top.expectingKey = false
					continue
				}
			}
			consumed()
		default:
			consumed()
		}
	}
	if len(stack) > 0 {
		return issues, io.ErrUnexpectedEOF
	}
	return issues, nil
}
