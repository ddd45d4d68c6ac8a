package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTable struct {
	headers []string
	rows    [][]string
}

func (tt testTable) Headers() []string { return tt.headers }
func (tt testTable) Rows() [][]string  { return tt.rows }

func TestPrintTable(t *testing.T) {
	data := testTable{
		headers: []string{"Key", "Namespace"},
		rows: [][]string{
			{"greeting", "myapp"},
			{"session", "myapp"},
		},
	}

	var buf bytes.Buffer
	err := PrintTable(&buf, data)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "session")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"Channel", "chan_1"},
		{"Events", "12"},
	}

	var buf bytes.Buffer
	err := SimpleTable(&buf, pairs)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Channel")
	assert.Contains(t, out, "chan_1")
	assert.Contains(t, out, "Events")
	assert.Contains(t, out, "12")
}
