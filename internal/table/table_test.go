package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{"movie_id", "chinese_name", "imdb_score"}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data", "movies"+ext)

			tbl, err := Open(path, testColumns)
			require.NoError(t, err)
			require.NoError(t, tbl.LoadIssue())
			require.Equal(t, 0, tbl.Len())

			rows := [][]string{
				{"11586", "游牧人生", "7.4"},
				{"2", "神隱少女, 重映", ""},
				{"007", "", "unavailable"},
			}
			require.NoError(t, tbl.Append(rows[0]))
			require.NoError(t, tbl.Append(rows[1:]...))

			reloaded, err := Open(path, testColumns)
			require.NoError(t, err)
			require.NoError(t, reloaded.LoadIssue())
			diff := cmp.Diff(rows, reloaded.Rows())
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestAppendRejectsWrongWidth(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "movies.csv"), testColumns)
	require.NoError(t, err)

	err = tbl.Append([]string{"1", "2"})
	require.Error(t, err)
	require.Equal(t, 0, tbl.Len())
}

func TestCorruptFileMovedAside(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		contents string
	}{
		{
			name:     "header mismatch",
			file:     "movies.csv",
			contents: "id,name\n1,a\n",
		},
		{
			name:     "broken quoting",
			file:     "movies.csv",
			contents: "movie_id,chinese_name,imdb_score\n\"1,a\n",
		},
		{
			name:     "not a workbook",
			file:     "movies.xlsx",
			contents: "this is not a zip archive",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), test.file)
			require.NoError(t, os.WriteFile(path, []byte(test.contents), 0644))

			tbl, err := Open(path, testColumns)
			require.NoError(t, err)
			require.ErrorIs(t, tbl.LoadIssue(), ErrCorrupt)
			require.Equal(t, 0, tbl.Len())

			moved, err := os.ReadFile(path + CorruptSuffix)
			require.NoError(t, err)
			require.Equal(t, test.contents, string(moved))

			require.NoError(t, tbl.Append([]string{"1", "a", "unavailable"}))
			reloaded, err := Open(path, testColumns)
			require.NoError(t, err)
			require.NoError(t, reloaded.LoadIssue())
			require.Equal(t, 1, reloaded.Len())
		})
	}
}

func TestCsvByteOrderMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	contents := utf8Bom + "movie_id,chinese_name,imdb_score\n1,游牧人生,7.4\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	tbl, err := Open(path, testColumns)
	require.NoError(t, err)
	require.NoError(t, tbl.LoadIssue())
	require.Equal(t, []string{"1", "游牧人生", "7.4"}, tbl.Row(0))
}

func TestShortXlsxRowsPadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.xlsx")
	tbl, err := Open(path, testColumns)
	require.NoError(t, err)
	require.NoError(t, tbl.Append([]string{"1", "游牧人生", ""}))

	reloaded, err := Open(path, testColumns)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "游牧人生", ""}, reloaded.Row(0))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "movies.json"), testColumns)
	require.Error(t, err)
}
