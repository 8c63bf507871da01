package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "nomadland游牧人生", NormalizeName("  Nomadland: 游牧人生 "))
	require.Equal(t, "哥吉拉大戰金剛", NormalizeName("哥吉拉 大戰 金剛"))
}

func TestPreview(t *testing.T) {
	require.Equal(t, "short", Preview("short", 200))

	long := strings.Repeat("劇", 201)
	preview := Preview(long, 200)
	require.Equal(t, strings.Repeat("劇", 200)+"...", preview)
}
