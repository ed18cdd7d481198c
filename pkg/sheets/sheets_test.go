package sheets

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fieldops/salesrecon/modules/recon/domain"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadLedger_SkipsPreambleAndDecodesRows(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"Monthly sales report"},
		{},
		{"Policy No", "Date", "Customer Manager", "Dept Manager", "Director", "Outlet Code", "Amount"},
		{"P-001", "2024-04-02", "Alice", "Mgr1", "Dir1", "N-01", "1,200.50"},
		{},
		{"P-002", "bad date", "Beth", "Mgr1", "Dir1", "N-01", "300"},
	})

	rows, err := ReadLedger(book)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Equal(t, "P-001", first.PolicyNo)
	require.Equal(t, "Alice", first.CustomerManager)
	require.Equal(t, "Mgr1", first.DeptManager)
	require.Equal(t, "Dir1", first.Director)
	require.Equal(t, "N-01", first.OutletCode)
	require.Equal(t, 4, first.Month)
	require.Equal(t, "1200.5", first.Amount.String())

	// Unparseable dates keep the row but leave it undated.
	require.Equal(t, 0, rows[1].Month)
	require.Equal(t, "Beth", rows[1].CustomerManager)
}

func TestReadLedger_RecognizesHeaderAliases(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"Issue Date", "Account Manager", "Manager", "Network Code", "Premium"},
		{"2024-06-10", "Alice", "Mgr1", "N-02", "50"},
	})

	rows, err := ReadLedger(book)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 6, rows[0].Month)
	require.Equal(t, "Alice", rows[0].CustomerManager)
	require.Equal(t, "Mgr1", rows[0].DeptManager)
	require.Equal(t, "N-02", rows[0].OutletCode)
}

func TestReadLedger_NoHeader(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"just", "random", "cells"},
		{"more", "random", "cells"},
	})

	_, err := ReadLedger(book)
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestReadSecondary(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"Customer Manager", "Dept Manager", "Director", "Staff Code", "Outlet Code"},
		{"Alice", "Mgr1", "Dir1", "E-1", "N-01"},
		{"Beth", "Mgr2", "", "E-2", ""},
	})

	rows, err := ReadSecondary(book)
	require.NoError(t, err)
	require.Equal(t, []domain.SecondaryRow{
		{CustomerManager: "Alice", DeptManager: "Mgr1", Director: "Dir1", EmployeeCode: "E-1", OutletCode: "N-01"},
		{CustomerManager: "Beth", DeptManager: "Mgr2", EmployeeCode: "E-2"},
	}, rows)
}
