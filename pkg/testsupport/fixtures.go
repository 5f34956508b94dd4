package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFixture reads a raw fixture, such as a reference dataset, from path.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON golden file at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("golden %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("golden %s: %w", path, err)
	}
	return nil
}
