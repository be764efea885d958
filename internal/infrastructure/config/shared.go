package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// SharedStorage is a named storage location shared by every user.
type SharedStorage struct {
	Name             string `json:"name" yaml:"name" toml:"name"`
	Path             string `json:"path" yaml:"path" toml:"path"`
	RestrictedAccess bool   `json:"restricted_access" yaml:"restricted_access" toml:"restricted_access"`
}

// SharedStorageList is an ordered list of shared storage entries.
type SharedStorageList []SharedStorage

// Decode implements envconfig.Decoder for a JSON array value.
func (l *SharedStorageList) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*l = nil
		return nil
	}

	var entries []SharedStorage
	if err := sonic.UnmarshalString(value, &entries); err != nil {
		return fmt.Errorf("invalid SHARED_STORAGE: %w", err)
	}
	*l = entries
	return nil
}

// Lookup returns the first entry with the given name.
func (l SharedStorageList) Lookup(name string) (SharedStorage, bool) {
	for _, entry := range l {
		if entry.Name == name {
			return entry, true
		}
	}
	return SharedStorage{}, false
}

// sharedStorageFile is the document layout of SHARED_STORAGE_FILE.
type sharedStorageFile struct {
	SharedStorage []SharedStorage `json:"shared_storage" yaml:"shared_storage" toml:"shared_storage"`
}

// LoadSharedStorageFile reads shared storage entries from a YAML, TOML or
// JSON document, chosen by file extension.
func LoadSharedStorageFile(path string) (SharedStorageList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shared storage file: %w", err)
	}

	var doc sharedStorageFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".json":
		err = sonic.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported shared storage file format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse shared storage file %s: %w", path, err)
	}

	return doc.SharedStorage, nil
}
