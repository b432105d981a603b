package octark

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectFileName is the name of the project record inside a project
// directory. Banks sit beside it as bank01.work..bank16.work and
// arrangements as arr01.work..arr08.work.
const ProjectFileName = "project.work"

// BackupSuffix is appended to a file name when a backup copy is made beside
// the original.
const BackupSuffix = ".bak"

// BankFileName returns the file name of the bank at the 1-based index.
func BankFileName(bank int) string {
	return fmt.Sprintf("bank%02d.work", bank)
}

// ArrangementFileName returns the file name of the arrangement at the
// 1-based index.
func ArrangementFileName(arrangement int) string {
	return fmt.Sprintf("arr%02d.work", arrangement)
}

// ProjectDir is one project directory on disk and the unit of exclusive
// access: nothing else is assumed to mutate its files while an operation
// runs. There is no file locking; the assumption is the caller's to honor.
// All operations are synchronous and banks are always processed in
// ascending order, so a partial failure leaves a reproducible state.
type ProjectDir struct {
	path string
}

// OpenProjectDir validates that path names an existing directory. No files
// are read yet.
func OpenProjectDir(path string) (*ProjectDir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not open project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %v", ErrNotADirectory, path)
	}
	return &ProjectDir{path: path}, nil
}

func (d *ProjectDir) Path() string { return d.path }

func (d *ProjectDir) ProjectPath() string {
	return filepath.Join(d.path, ProjectFileName)
}

func (d *ProjectDir) BankPath(bank int) string {
	return filepath.Join(d.path, BankFileName(bank))
}

func (d *ProjectDir) ArrangementPath(arrangement int) string {
	return filepath.Join(d.path, ArrangementFileName(arrangement))
}

// LoadProject reads and decodes the project file of the directory.
func (d *ProjectDir) LoadProject() (*Project, error) {
	data, err := readRecordFile(d.ProjectPath())
	if err != nil {
		return nil, err
	}
	return DecodeProject(data)
}

// SaveProject encodes and overwrites the project file of the directory.
func (d *ProjectDir) SaveProject(project *Project) error {
	data, err := EncodeProject(project)
	if err != nil {
		return err
	}
	return writeRecordFile(d.ProjectPath(), data)
}

// LoadBank reads and decodes the bank file at the 1-based index.
func (d *ProjectDir) LoadBank(bank int) (*Bank, error) {
	if err := ValidateIndexList([]int{bank}, NumBanks); err != nil {
		return nil, err
	}
	data, err := readRecordFile(d.BankPath(bank))
	if err != nil {
		return nil, err
	}
	return DecodeBank(data)
}

// SaveBank encodes and overwrites the bank file at the 1-based index.
func (d *ProjectDir) SaveBank(bank int, b *Bank) error {
	if err := ValidateIndexList([]int{bank}, NumBanks); err != nil {
		return err
	}
	data, err := EncodeBank(b)
	if err != nil {
		return err
	}
	return writeRecordFile(d.BankPath(bank), data)
}

// LoadBanks reads and decodes all 16 banks in ascending order.
func (d *ProjectDir) LoadBanks() ([]*Bank, error) {
	banks := make([]*Bank, 0, NumBanks)
	for bank := 1; bank <= NumBanks; bank++ {
		b, err := d.LoadBank(bank)
		if err != nil {
			return nil, fmt.Errorf("could not load bank %v: %w", bank, err)
		}
		banks = append(banks, b)
	}
	return banks, nil
}

// LoadArrangement reads and decodes the arrangement file at the 1-based
// index.
func (d *ProjectDir) LoadArrangement(arrangement int) (*Arrangement, error) {
	if err := ValidateIndexList([]int{arrangement}, NumArrangements); err != nil {
		return nil, err
	}
	data, err := readRecordFile(d.ArrangementPath(arrangement))
	if err != nil {
		return nil, err
	}
	return DecodeArrangement(data)
}

// SaveArrangement encodes and overwrites the arrangement file at the 1-based
// index.
func (d *ProjectDir) SaveArrangement(arrangement int, a *Arrangement) error {
	if err := ValidateIndexList([]int{arrangement}, NumArrangements); err != nil {
		return err
	}
	data, err := EncodeArrangement(a)
	if err != nil {
		return err
	}
	return writeRecordFile(d.ArrangementPath(arrangement), data)
}

// Backup copies the project file and all 16 bank files beside themselves,
// adding BackupSuffix to each name. A failed copy aborts the whole backup;
// the caller must not mutate anything in that case. Backups are never
// restored automatically, they are the manual recovery path.
func (d *ProjectDir) Backup() error {
	files := make([]string, 0, 1+NumBanks)
	files = append(files, d.ProjectPath())
	for bank := 1; bank <= NumBanks; bank++ {
		files = append(files, d.BankPath(bank))
	}
	for _, file := range files {
		if err := copyFile(file, file+BackupSuffix); err != nil {
			return fmt.Errorf("backup failed, nothing was modified: %w", err)
		}
	}
	return nil
}

// Deduplicate merges equivalent sample slots of the project and rewrites
// every reference to a merged slot across all 16 banks. The project and all
// banks are backed up before anything is written. The returned plan carries
// the 1-based slot ids the device displays. A failure after the backup step
// can leave the directory partially updated; the backups are the sole
// recovery path, as there is no multi-file atomicity on a plain filesystem.
func (d *ProjectDir) Deduplicate() ([]Reassignment, error) {
	project, err := d.LoadProject()
	if err != nil {
		return nil, err
	}
	if err := d.Backup(); err != nil {
		return nil, err
	}
	banks, err := d.LoadBanks()
	if err != nil {
		return nil, err
	}
	slots := project.AllSlots()
	zeroIndexSlots(slots)
	retained, plan := PlanDeduplication(slots)
	RewriteSlotReferences(plan, banks)
	oneIndexSlots(retained)
	project.setAllSlots(retained)
	if err := d.SaveProject(project); err != nil {
		return nil, err
	}
	for bank, b := range banks {
		if err := d.SaveBank(bank+1, b); err != nil {
			return nil, err
		}
	}
	oneIndexPlan(plan)
	return plan, nil
}

// DeduplicationPlan computes the plan Deduplicate would apply, without
// touching any file. The returned plan carries 1-based slot ids.
func (d *ProjectDir) DeduplicationPlan() ([]Reassignment, error) {
	project, err := d.LoadProject()
	if err != nil {
		return nil, err
	}
	slots := project.AllSlots()
	zeroIndexSlots(slots)
	_, plan := PlanDeduplication(slots)
	oneIndexPlan(plan)
	return plan, nil
}

func oneIndexPlan(plan []Reassignment) {
	for i := range plan {
		plan[i].InitialSlotID++
		plan[i].NewSlotID++
	}
}

func readRecordFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat %v: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %v", ErrNotAFile, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %w", path, err)
	}
	return data, nil
}

func writeRecordFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %v: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("could not read %v: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("could not write %v: %w", dst, err)
	}
	return nil
}
