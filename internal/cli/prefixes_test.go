package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
)

func TestPrefixesText(t *testing.T) {
	out, err := execute(t, "prefixes")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "prefixes", []byte(out))
}

func TestPrefixesJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "prefixes")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, prefix.SchemaNS, resp.Data["dns"])
	assert.Equal(t, prefix.DataNS, resp.Data["dn"])
}
