package pipeline

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"ovpnapi/internal/country"
	"ovpnapi/internal/generator"
	"ovpnapi/internal/ovpn"
)

var recordKeys = []string{
	"countrylong",
	"countryshort",
	"hostname",
	"ip",
	"logtype",
	"message",
	"numvpnsessions",
	"openvpn_configdata_base64",
	"operator",
	"ping",
	"score",
	"speed",
	"totaltraffic",
	"totalusers",
	"uptime",
}

const japanProfile = `# "server": "Japan_tcp"
client
dev tun
proto tcp
remote 10.0.0.5 1194
`

func newTestConverter() *Converter {
	return NewConverter(
		ovpn.NewParser(ovpn.DefaultValues()),
		country.NewTable("XX"),
		generator.New(generator.NewSource(99)),
	)
}

func newTestLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

type tarFile struct {
	name string
	body string
}

func buildTar(t *testing.T, files ...tarFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     f.name,
			Mode:     0o644,
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// readListing decodes an index.json into generic wrappers
func readListing(t *testing.T, fs afero.Fs, path string) []map[string][]map[string]interface{} {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var listing []map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &listing))
	return listing
}

// requireRecordShape checks that every wrapper holds one record with
// exactly the listing keys, each a string
func requireRecordShape(t *testing.T, listing []map[string][]map[string]interface{}) {
	t.Helper()
	for i, wrapper := range listing {
		require.Len(t, wrapper, 1, "wrapper %d", i)
		servers, ok := wrapper["servers"]
		require.True(t, ok, "wrapper %d has no servers key", i)
		require.Len(t, servers, 1, "wrapper %d", i)

		var keys []string
		for k, v := range servers[0] {
			keys = append(keys, k)
			_, isString := v.(string)
			require.True(t, isString, "wrapper %d key %s is %T", i, k, v)
		}
		sort.Strings(keys)
		require.Equal(t, recordKeys, keys)
	}
}

// failingFs refuses to open one file name
type failingFs struct {
	afero.Fs
	fail string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if filepath.Base(name) == f.fail {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}
