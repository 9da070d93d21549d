package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ConfigExt is the extension of an OpenVPN client profile
const ConfigExt = ".ovpn"

// IsConfig reports whether name has the profile extension
func IsConfig(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ConfigExt)
}

// FindConfigs walks root recursively and returns every profile path
// relative to root
func FindConfigs(fs afero.Fs, root string) ([]string, error) {
	var results []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsConfig(info.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return results, nil
}

// ListConfigs returns the profile file names directly inside dir
func ListConfigs(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() && IsConfig(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// RemoveConfigs deletes every profile below root together with any
// directory left empty by the removal. Other files stay in place and
// root itself is kept. Running it twice is a no-op the second time.
func RemoveConfigs(fs afero.Fs, root string) (int, error) {
	return removeConfigs(fs, root, true)
}

func removeConfigs(fs afero.Fs, dir string, isRoot bool) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			n, err := removeConfigs(fs, path, false)
			removed += n
			if err != nil {
				return removed, err
			}
			continue
		}

		if IsConfig(entry.Name()) {
			if err := fs.Remove(path); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", path, err)
			}
			removed++
		}
	}

	if isRoot {
		return removed, nil
	}

	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return removed, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	if empty {
		if err := fs.Remove(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	return removed, nil
}
