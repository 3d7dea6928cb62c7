package output

import (
	"time"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

// unitView is the serializable form of a descriptor.
type unitView struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Phase       int      `json:"phase" yaml:"phase"`
	PhaseName   string   `json:"phase_name,omitempty" yaml:"phase_name,omitempty"`
	Profiles    []string `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Settings    []string `json:"settings,omitempty" yaml:"settings,omitempty"`
	Flags       []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Packages    []string `json:"packages,omitempty" yaml:"packages,omitempty"`
	DevPackages []string `json:"dev_packages,omitempty" yaml:"dev_packages,omitempty"`
	Source      string   `json:"source" yaml:"source"`
}

func toUnitViews(units []*entities.UnitDescriptor) []unitView {
	out := make([]unitView, 0, len(units))
	for _, u := range units {
		v := unitView{
			ID:          u.ID().String(),
			Name:        u.Name(),
			Description: u.Description(),
			Phase:       u.Phase().Int(),
			PhaseName:   u.PhaseName(),
			Profiles:    u.Profiles(),
			Settings:    u.Settings(),
			Source:      u.Source(),
		}
		for _, f := range u.Flags() {
			v.Flags = append(v.Flags, string(f))
		}
		for _, p := range u.Packages() {
			v.Packages = append(v.Packages, p.String())
		}
		for _, p := range u.DevPackages() {
			v.DevPackages = append(v.DevPackages, p.String())
		}
		out = append(out, v)
	}
	return out
}

type unitList struct {
	Units []unitView `json:"units" yaml:"units"`
}

// ledgerEntryView keeps the unit ID, which the ledger file stores as the
// map key instead.
type ledgerEntryView struct {
	UnitID      string    `json:"unit_id" yaml:"unit_id"`
	Status      string    `json:"status" yaml:"status"`
	SucceededAt time.Time `json:"succeeded_at" yaml:"succeeded_at"`
	RunID       string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

type ledgerList struct {
	Entries []ledgerEntryView `json:"entries" yaml:"entries"`
}

func toLedgerList(entries []entities.LedgerEntry) ledgerList {
	out := ledgerList{Entries: make([]ledgerEntryView, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, ledgerEntryView{
			UnitID:      e.UnitID,
			Status:      e.Status,
			SucceededAt: e.SucceededAt,
			RunID:       e.RunID,
		})
	}
	return out
}
