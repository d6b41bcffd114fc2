// Package export renders agency data as XLSX workbooks for download.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/format"
)

var statusLabels = map[application.ClientStatus]string{
	application.StatusNew:        "Новый",
	application.StatusInProgress: "В работе",
	application.StatusCompleted:  "Завершён",
	application.StatusCancelled:  "Отменён",
}

var sourceLabels = map[application.Source]string{
	application.SourceSocial:   "Социальные сети",
	application.SourceReferral: "Рекомендация",
	application.SourcePersonal: "Личный контакт",
}

// StatusLabel returns the Russian display label for a pipeline status.
func StatusLabel(status application.ClientStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// SourceLabel returns the Russian display label for a client source.
func SourceLabel(source application.Source) string {
	if label, ok := sourceLabels[source]; ok {
		return label
	}
	return string(source)
}

// ClientsWorkbook renders the client list as an XLSX workbook. The
// employeeNames map resolves employee ids to display names; unknown ids
// fall back to the raw id.
func ClientsWorkbook(clients []application.Client, employeeNames map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), "Клиенты")
	sheet := "Клиенты"

	headers := []string{
		"ФИО", "Телефон", "Дата обращения", "Источник", "Кто рекомендовал",
		"Сотрудник", "Статус", "Дата завершения", "Причина отмены", "Следующий контакт",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, client := range clients {
		employee := employeeNames[client.EmployeeID]
		if employee == "" {
			employee = client.EmployeeID
		}

		values := []any{
			client.FullName,
			formatPhone(client.Phone),
			format.Date(client.ContactDate),
			SourceLabel(client.Source),
			stringValue(client.ReferralName),
			employee,
			StatusLabel(client.Status),
			optionalDate(client.CompletionDate),
			stringValue(client.CancellationReason),
			optionalDateTime(client.NextContact),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write client row: %w", err)
			}
		}
	}

	return writeBuffer(f)
}

// StatisticsWorkbook renders the owner's aggregated statistics as an
// XLSX workbook with one row per employee plus a totals row.
func StatisticsWorkbook(stats application.Statistics) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), "Статистика")
	sheet := "Статистика"

	headers := []string{
		"Сотрудник", "Всего клиентов", "Новые", "В работе", "Завершено",
		"Отменено", "Успешность, %", "Предстоящие встречи",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for _, employee := range stats.Employees {
		values := []any{
			employee.FullName,
			employee.Counts.Total,
			employee.Counts.New,
			employee.Counts.InProgress,
			employee.Counts.Completed,
			employee.Counts.Cancelled,
			employee.SuccessRate,
			employee.UpcomingMeetings,
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	totals := []any{
		"Итого",
		stats.Totals.Total,
		stats.Totals.New,
		stats.Totals.InProgress,
		stats.Totals.Completed,
		stats.Totals.Cancelled,
		nil,
		nil,
	}
	if err := writeRow(f, sheet, row, totals); err != nil {
		return nil, err
	}

	return writeBuffer(f)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to build data cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

func writeBuffer(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPhone(phone *string) string {
	if phone == nil {
		return ""
	}
	return format.Phone(*phone)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return format.Date(*t)
}

func optionalDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return format.DateTime(*t)
}
