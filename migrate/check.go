package migrate

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/extract"
)

// Status of one generated document on disk compared with the plan.
type Status string

const (
	StatusUpToDate Status = "up to date"
	StatusMissing  Status = "missing"
	StatusDiffers  Status = "differs"
	// StatusStale marks a per-kind document on disk whose kind no longer has declarations.
	StatusStale Status = "stale"
)

// FileCheck is the status of one document.
type FileCheck struct {
	Path   string
	Status Status
}

// KindCheck compares the export names planned for a kind with the ones found
// in its document on disk.
type KindCheck struct {
	Kind    extract.Kind
	Planned []string
	Found   []string
	Missing []string // planned, not on disk
	Extra   []string // on disk, not planned
}

// Report is the outcome of Check.
type Report struct {
	Plan  *Plan
	Files []FileCheck
	Kinds []KindCheck
}

// UpToDate reports whether every planned document is on disk unchanged and
// no stale document remains.
func (r *Report) UpToDate() bool {
	for _, f := range r.Files {
		if f.Status != StatusUpToDate {
			return false
		}
	}
	return true
}

// Check plans the migration for root and compares it with the tree on disk
// without writing anything.
func (m *Migrator) Check(ctx context.Context, root string) (*Report, error) {
	plan, err := m.Plan(ctx, root)
	if err != nil {
		return nil, err
	}

	report := &Report{Plan: plan}

	for _, doc := range plan.Documents {
		data, found, err := m.readOptional(m.path(root, doc.Path))
		if err != nil {
			return nil, err
		}
		status := StatusUpToDate
		switch {
		case !found:
			status = StatusMissing
		case string(data) != doc.Content:
			status = StatusDiffers
		}
		report.Files = append(report.Files, FileCheck{Path: doc.Path, Status: status})
	}

	l := m.opts.Layout
	kinds := []struct {
		kind    extract.Kind
		path    string
		planned []string
		names   func(string) []string
	}{
		{extract.KindApi, l.Apis(), plan.Exports.Api, apiNames},
		{extract.KindCard, l.Cards(), plan.Exports.Card, extensionNames(extract.CardBlueprint)},
		{extract.KindContent, l.Content(), plan.Exports.Content, extensionNames(extract.ContentBlueprint)},
	}
	for _, k := range kinds {
		data, found, err := m.readOptional(m.path(root, k.path))
		if err != nil {
			return nil, err
		}

		if found && len(k.planned) == 0 {
			report.Files = append(report.Files, FileCheck{Path: k.path, Status: StatusStale})
		}

		var onDisk []string
		if found {
			onDisk = k.names(string(data))
		}
		report.Kinds = append(report.Kinds, KindCheck{
			Kind:    k.kind,
			Planned: k.planned,
			Found:   onDisk,
			Missing: difference(k.planned, onDisk),
			Extra:   difference(onDisk, k.planned),
		})
	}

	return report, nil
}

func (m *Migrator) readOptional(path string) ([]byte, bool, error) {
	data, err := afero.ReadFile(m.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, true, nil
}

func apiNames(src string) []string {
	var names []string
	for _, r := range extract.Records(extract.Scan(src, extract.ApiBlueprint)) {
		names = append(names, r.BoundName)
	}
	return names
}

func extensionNames(shape extract.Shape[extract.ExtensionRecord]) func(string) []string {
	return func(src string) []string {
		var names []string
		for _, r := range extract.Records(extract.Scan(src, shape)) {
			names = append(names, r.ConstName)
		}
		return names
	}
}

// difference returns the names in a that are not in b, in order.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	return out
}
