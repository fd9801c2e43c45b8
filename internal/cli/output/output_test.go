package output

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFormat(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	viper.Reset()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", format)
	color.NoColor = true
	buf := &bytes.Buffer{}
	Out = buf
	return buf
}

func TestPrintListJSON(t *testing.T) {
	buf := setFormat(t, "json")
	data := map[string]interface{}{"puffs": []int{1, 2}, "count": 2}

	require.NoError(t, PrintList(data, []string{"id"}, [][]string{{"1"}, {"2"}}))
	assert.JSONEq(t, `{"puffs":[1,2],"count":2}`, buf.String())
}

func TestPrintListTable(t *testing.T) {
	buf := setFormat(t, "table")

	require.NoError(t, PrintList(nil, []string{"name", "puffs"}, [][]string{{"alice", "3"}, {"bob", "10"}}))
	assert.Equal(t, "NAME   PUFFS\nalice  3\nbob    10\n", buf.String())
}

func TestPrintListText(t *testing.T) {
	buf := setFormat(t, "text")

	require.NoError(t, PrintList(nil, []string{"name", "puffs"}, [][]string{{"alice", "3"}}))
	assert.Equal(t, "alice  ·  3\n", buf.String())
}

func TestPrintRecordText(t *testing.T) {
	buf := setFormat(t, "text")

	require.NoError(t, PrintRecord(nil, []Field{{"Email", "alice@example.com"}, {"2FA", false}}))
	assert.Equal(t, "Email: alice@example.com\n2FA: false\n", buf.String())
}

func TestValidateOutputFormat(t *testing.T) {
	assert.True(t, ValidateOutputFormat("table"))
	assert.False(t, ValidateOutputFormat("yaml"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
}
