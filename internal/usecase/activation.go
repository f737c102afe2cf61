package usecase

import (
	"context"
	"errors"
	"fmt"

	"JurisMonitor/internal/domain"
)

// ErrInvalidFrequency is returned for frequencies other than daily, weekly or manual.
var ErrInvalidFrequency = errors.New("monitoring: invalid frequency")

// Activate enables monitoring for a process. Calling it again only updates
// the frequency. The process number must route to a known tribunal.
func (m *Monitor) Activate(ctx context.Context, processID int64, frequency domain.Frequency) (domain.MonitorConfig, error) {
	if frequency == "" {
		frequency = domain.FrequencyDaily
	}
	if !frequency.Valid() {
		return domain.MonitorConfig{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}

	p, err := m.processes.Process(ctx, processID)
	if err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("load process: %w", err)
	}

	info, err := m.router.ResolveNPU(p.Number)
	if err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("activate process %d: %w", processID, err)
	}

	if !p.Tribunal.Resolved() {
		ref := domain.TribunalRef{Acronym: info.Acronym, Name: info.Name, UF: info.UF}
		if err := m.processes.UpdateTribunal(ctx, processID, ref); err != nil {
			return domain.MonitorConfig{}, fmt.Errorf("store tribunal: %w", err)
		}
	}

	cfg, err := m.processes.UpsertMonitorConfig(ctx, processID, frequency)
	if err != nil {
		return domain.MonitorConfig{}, fmt.Errorf("upsert monitor config: %w", err)
	}

	m.logger.Info("monitoring activated", "process_id", processID, "tribunal", info.Acronym, "frequency", frequency)
	return cfg, nil
}

// Deactivate disables monitoring and keeps the collected history.
func (m *Monitor) Deactivate(ctx context.Context, processID int64) error {
	if err := m.processes.DeactivateMonitor(ctx, processID); err != nil {
		return fmt.Errorf("deactivate monitoring: %w", err)
	}
	m.logger.Info("monitoring deactivated", "process_id", processID)
	return nil
}
