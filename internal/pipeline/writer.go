package pipeline

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"

	"ovpnapi/pkg/models"
	"ovpnapi/pkg/utils"
)

// IndexFile is the name of every generated listing document
const IndexFile = "index.json"

// WriteJSON writes servers to path as a 4-space indented array,
// replacing any previous content
func WriteJSON(fs afero.Fs, path string, servers []models.Wrapper) error {
	if servers == nil {
		servers = []models.Wrapper{}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return utils.WrapErrorf(err, "failed to create %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(servers); err != nil {
		return utils.WrapError(err, "failed to encode servers")
	}

	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return utils.WrapErrorf(err, "failed to write %s", path)
	}
	return nil
}
