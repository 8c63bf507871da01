package table

import (
	"bufio"
	"encoding/csv"
	"io"
)

const utf8Bom = "\ufeff"

type csvCodec struct{}

func (csvCodec) decode(r io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(r)
	prefix, err := buffered.Peek(len(utf8Bom))
	if err == nil && string(prefix) == utf8Bom {
		buffered.Discard(len(utf8Bom))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func (csvCodec) encode(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	err := writer.WriteAll(rows)
	if err != nil {
		return err
	}
	return writer.Error()
}
