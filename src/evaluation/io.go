package evaluation

import (
	"fmt"
	"os"
	"strings"

	"github.com/esteinig/sketchy/src/version"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// Dump is a method to write the result to disk, so plots can be redrawn without re-evaluating
func (r *Result) Dump(path string) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load is a function to read a dumped result from disk
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes is a function to decode a dumped result
func LoadFromBytes(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("evaluation result appears empty")
	}
	r := &Result{}
	if err := msgpack.Unmarshal(data, r); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(r.Version, version.GetBaseVersion()+".") {
		return nil, fmt.Errorf("the evaluation result was created with a different version of sketchy (%v, you are currently using version %v)", r.Version, version.GetVersion())
	}
	if r.Timeline == nil || r.Curve == nil {
		return nil, fmt.Errorf("evaluation result is incomplete")
	}
	return r, nil
}
