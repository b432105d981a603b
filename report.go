package octark

import (
	"embed"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type (
	// ProjectReport is the data a project summary is rendered from.
	ProjectReport struct {
		Path      string
		OSVersion string
		Format    int
		BPM       float64
		Slots     []SlotReport
		Banks     []BankReport
	}

	// SlotReport is one sample slot with its usage count across all banks
	// that loaded.
	SlotReport struct {
		Slot   SampleSlot
		Usages int
		Active bool
	}

	// BankReport summarizes one bank: its part names and the patterns that
	// contain any trigs.
	BankReport struct {
		Number    int
		PartNames []string
		Patterns  []PatternReport
	}

	PatternReport struct {
		Number int
		Trigs  int
	}
)

// NewProjectReport loads a project directory read-only and gathers the
// report data. Banks that fail to load are skipped rather than fatal, so a
// report can still be produced for a partially corrupt directory; skipped
// banks contribute no usages.
func NewProjectReport(d *ProjectDir) (*ProjectReport, error) {
	project, err := d.LoadProject()
	if err != nil {
		return nil, err
	}
	report := &ProjectReport{
		Path:      d.Path(),
		OSVersion: project.OSVersion,
		Format:    project.FormatVersion,
		BPM:       project.Mixer.BPM(),
	}
	var patterns []Pattern
	var parts []Part
	for bank := 1; bank <= NumBanks; bank++ {
		b, err := d.LoadBank(bank)
		if err != nil {
			continue
		}
		bankReport := BankReport{Number: bank}
		for part := 1; part <= NumParts; part++ {
			bankReport.PartNames = append(bankReport.PartNames, b.PartName(part))
		}
		for i := range b.Patterns {
			if trigs := b.Patterns[i].TrigCount(); trigs > 0 {
				bankReport.Patterns = append(bankReport.Patterns, PatternReport{Number: i + 1, Trigs: trigs})
			}
		}
		report.Banks = append(report.Banks, bankReport)
		patterns = append(patterns, b.Patterns[:]...)
		parts = append(parts, b.Parts.Saved[:]...)
		parts = append(parts, b.Parts.Unsaved[:]...)
	}
	counts := make(map[SlotUsage]int)
	for _, usage := range ScanSlotReferences(project, patterns, parts) {
		usage.Active = false
		counts[usage]++
	}
	for _, slot := range project.AllSlots() {
		report.Slots = append(report.Slots, SlotReport{
			Slot:   slot,
			Usages: counts[SlotUsage{SlotID: slot.ID, Type: slot.Type}],
			Active: slot.Path != "",
		})
	}
	return report, nil
}

// Render writes the report as text.
func (r *ProjectReport) Render(w io.Writer) error {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return fmt.Errorf("could not create templates: %v", err)
	}
	if err := tmpl.ExecuteTemplate(w, "project.tmpl", r); err != nil {
		return fmt.Errorf("could not render report: %v", err)
	}
	return nil
}
