package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/agency-crm/internal/application"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	value, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s): %v", cell, err)
	}
	return value
}

func TestClientsWorkbook(t *testing.T) {
	phone := "79181234567"
	reason := "дорого"
	contact := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)

	clients := []application.Client{
		{
			ID:          "c1",
			EmployeeID:  "emp-1",
			FullName:    "Иванов Иван",
			Phone:       &phone,
			ContactDate: contact,
			Source:      application.SourceSocial,
			Status:      application.StatusInProgress,
		},
		{
			ID:                 "c2",
			EmployeeID:         "ghost",
			FullName:           "Петров Пётр",
			ContactDate:        contact,
			Source:             application.SourcePersonal,
			Status:             application.StatusCancelled,
			CancellationReason: &reason,
		},
	}

	data, err := ClientsWorkbook(clients, map[string]string{"emp-1": "Наталья"})
	if err != nil {
		t.Fatalf("ClientsWorkbook: %v", err)
	}

	f := openWorkbook(t, data)
	const sheet = "Клиенты"

	if got := cellValue(t, f, sheet, "A1"); got != "ФИО" {
		t.Fatalf("A1 = %q", got)
	}
	if got := cellValue(t, f, sheet, "A2"); got != "Иванов Иван" {
		t.Fatalf("A2 = %q", got)
	}
	if got := cellValue(t, f, sheet, "B2"); got != "+7 (918) 123-45-67" {
		t.Fatalf("phone not formatted: %q", got)
	}
	if got := cellValue(t, f, sheet, "C2"); got != "02.04.2024" {
		t.Fatalf("contact date = %q", got)
	}
	if got := cellValue(t, f, sheet, "D2"); got != "Социальные сети" {
		t.Fatalf("source label = %q", got)
	}
	if got := cellValue(t, f, sheet, "F2"); got != "Наталья" {
		t.Fatalf("employee name = %q", got)
	}
	if got := cellValue(t, f, sheet, "G2"); got != "В работе" {
		t.Fatalf("status label = %q", got)
	}

	// Unknown employee ids fall back to the raw id.
	if got := cellValue(t, f, sheet, "F3"); got != "ghost" {
		t.Fatalf("fallback employee = %q", got)
	}
	if got := cellValue(t, f, sheet, "I3"); got != "дорого" {
		t.Fatalf("cancellation reason = %q", got)
	}
}

func TestStatisticsWorkbook(t *testing.T) {
	stats := application.Statistics{
		Totals: application.StatusCounts{Total: 3, New: 1, InProgress: 1, Completed: 1},
		Employees: []application.EmployeeStatistics{
			{
				EmployeeID:       "emp-1",
				FullName:         "Наталья",
				Counts:           application.StatusCounts{Total: 3, New: 1, InProgress: 1, Completed: 1},
				SuccessRate:      33.3,
				UpcomingMeetings: 2,
			},
		},
	}

	data, err := StatisticsWorkbook(stats)
	if err != nil {
		t.Fatalf("StatisticsWorkbook: %v", err)
	}

	f := openWorkbook(t, data)
	const sheet = "Статистика"

	if got := cellValue(t, f, sheet, "A1"); got != "Сотрудник" {
		t.Fatalf("A1 = %q", got)
	}
	if got := cellValue(t, f, sheet, "A2"); got != "Наталья" {
		t.Fatalf("A2 = %q", got)
	}
	if got := cellValue(t, f, sheet, "G2"); got != "33.3" {
		t.Fatalf("success rate = %q", got)
	}
	if got := cellValue(t, f, sheet, "A3"); got != "Итого" {
		t.Fatalf("totals row = %q", got)
	}
	if got := cellValue(t, f, sheet, "B3"); got != "3" {
		t.Fatalf("totals count = %q", got)
	}
}

func TestLabelsFallBackToRawValue(t *testing.T) {
	if got := StatusLabel(application.ClientStatus("archived")); got != "archived" {
		t.Fatalf("StatusLabel fallback = %q", got)
	}
	if got := SourceLabel(application.Source("ads")); got != "ads" {
		t.Fatalf("SourceLabel fallback = %q", got)
	}
}
