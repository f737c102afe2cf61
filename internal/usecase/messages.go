package usecase

import (
	"fmt"
	"strings"
	"time"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/npu"
)

const displayLayout = "02/01/2006 15:04"

// displayDate renders a stored movement timestamp for people; unparseable
// values are shown as stored.
func displayDate(occurredAt string) string {
	t, err := time.Parse(domain.StoredLayout, occurredAt)
	if err != nil {
		return occurredAt
	}
	return t.Format(displayLayout)
}

func movementAlert(processID, workspaceID int64, number string, mv domain.Movement) domain.Alert {
	pid, mid := processID, mv.ID
	return domain.Alert{
		WorkspaceID: workspaceID,
		ProcessID:   &pid,
		MovementID:  &mid,
		Kind:        domain.AlertMovement,
		Title:       "Nova movimentação - " + npu.Short(npu.Digits(number)),
		Body:        fmt.Sprintf("%s\nData: %s", mv.Name, mv.OccurredAt),
	}
}

func movementSubject(number string, count int) string {
	short := npu.Short(npu.Digits(number))
	if count == 1 {
		return "Nova movimentação - " + short
	}
	return fmt.Sprintf("%d novas movimentações - %s", count, short)
}

func movementLines(movements []domain.Movement) []string {
	lines := make([]string, 0, len(movements))
	for _, mv := range movements {
		lines = append(lines, fmt.Sprintf("%s - %s", mv.Name, displayDate(mv.OccurredAt)))
	}
	return lines
}

func deadlineTitle(d domain.Deadline, days int) string {
	switch days {
	case 0:
		return "Prazo vence hoje: " + d.Title
	case 1:
		return "Prazo vence amanhã: " + d.Title
	default:
		return fmt.Sprintf("Prazo em %d dias: %s", days, d.Title)
	}
}

func deadlineBody(d domain.Deadline) string {
	var b strings.Builder
	if d.ProcessNPU != "" {
		fmt.Fprintf(&b, "Processo: %s\n", npu.Format(d.ProcessNPU))
	}
	fmt.Fprintf(&b, "Data: %s", d.DueAt.Format("02/01/2006"))
	return b.String()
}

func summaryTitle(day time.Time, count int) string {
	if count == 1 {
		return "Resumo do dia " + day.Format("02/01/2006") + ": 1 nova movimentação"
	}
	return fmt.Sprintf("Resumo do dia %s: %d novas movimentações", day.Format("02/01/2006"), count)
}

func summaryLines(movements []domain.Movement) []string {
	lines := make([]string, 0, len(movements))
	for _, mv := range movements {
		lines = append(lines, fmt.Sprintf("%s: %s - %s", npu.Format(mv.ProcessNumber), mv.Name, displayDate(mv.OccurredAt)))
	}
	return lines
}

func processLink(appURL string, processID int64) string {
	if appURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/processos/%d", strings.TrimRight(appURL, "/"), processID)
}
