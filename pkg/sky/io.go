package sky

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/starsky/pkg/errors"
)

// Marshal encodes s as indented JSON.
func Marshal(s *Sky) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a sky document.
func Unmarshal(data []byte) (*Sky, error) {
	var s Sky
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode sky")
	}
	for _, st := range s.Stars {
		if !ValidColor(st.Color) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "star %d: invalid color %q", st.ID, st.Color)
		}
	}
	return &s, nil
}

// ValidColor reports whether c is exactly a "#rgb" or "#rrggbb" hex colour.
func ValidColor(c string) bool {
	if len(c) != 4 && len(c) != 7 {
		return false
	}
	_, err := colorful.Hex(c)
	return err == nil
}

// Read decodes a sky document from r.
func Read(r io.Reader) (*Sky, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sky: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile decodes the sky document at path.
func ReadFile(path string) (*Sky, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sky file not found: %s", path)
		}
		return nil, fmt.Errorf("open sky: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes s to path as indented JSON.
func WriteFile(path string, s *Sky) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
