package table

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
)

type xlsxCodec struct {
	sheet string
}

func (c xlsxCodec) decode(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func (c xlsxCodec) encode(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := c.sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		err := f.SetSheetName("Sheet1", sheet)
		if err != nil {
			return err
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		err = f.SetSheetRow(sheet, cell, &values)
		if err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
