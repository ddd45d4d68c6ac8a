package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latchhq/latch/internal/cli/timeutil"
)

func TestTokenListRows(t *testing.T) {
	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tl := TokenList{
		{ID: "tok_1", Action: "identity_claim", State: "unused", Label: "alice", ExpiresAt: expires},
		{ID: "tok_2", Action: "blob_access", State: "used"},
	}

	rows := tl.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"tok_1", "identity_claim", "unused", "alice", timeutil.FormatTime(expires)}, rows[0])
	assert.Equal(t, []string{"tok_2", "blob_access", "used", "-", "-"}, rows[1])
}

func TestTokenListHeaders(t *testing.T) {
	require.NotEmpty(t, TokenList{{ID: "tok"}}.Rows())
	assert.Len(t, TokenList{}.Headers(), len(TokenList{{ID: "tok"}}.Rows()[0]))
}
