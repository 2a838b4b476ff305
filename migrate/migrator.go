package migrate

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/plugmig/am"
	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/extract"
	"github.com/teranos/plugmig/generate"
	"github.com/teranos/plugmig/internal/gitstate"
	"github.com/teranos/plugmig/logger"
	"github.com/teranos/plugmig/manifest"
	"github.com/teranos/plugmig/registry"
)

// Options control one migration.
type Options struct {
	SourceFile     string // legacy plugin source, relative to the root
	Layout         generate.Layout
	ManifestFile   string // relative to the root
	UpdateManifest bool
	RequireClean   bool
	DryRun         bool
}

// OptionsFromConfig maps configuration onto Options.
func OptionsFromConfig(cfg *am.Config) Options {
	return Options{
		SourceFile: cfg.Source.File,
		Layout: generate.Layout{
			AlphaDir:  cfg.Output.AlphaDir,
			EntryFile: cfg.Output.EntryFile,
		},
		ManifestFile:   cfg.Manifest.File,
		UpdateManifest: cfg.Manifest.Update,
		RequireClean:   cfg.Git.RequireClean,
	}
}

// checkLayout refuses layouts that would write a document over the legacy
// source, the manifest or another document.
func (o Options) checkLayout() error {
	reserved := []generate.Target{{Role: "legacy source", Path: filepath.ToSlash(o.SourceFile)}}
	if o.ManifestFile != "" {
		reserved = append(reserved, generate.Target{Role: "manifest", Path: filepath.ToSlash(o.ManifestFile)})
	}
	if written, other, found := o.Layout.Collision(reserved...); found {
		return errors.Newf("refusing to write the %s over the %s at %s", written.Role, other.Role, written.Path)
	}
	return nil
}

// Migrator runs migrations against a file system.
type Migrator struct {
	fs       afero.Fs
	opts     Options
	resolver registry.Resolver

	// requireClean checks the on-disk worktree; the afero tree may be in memory.
	requireClean func(dir string) (gitstate.State, error)
}

// New creates a Migrator. resolver may be nil when the manifest is not updated.
func New(fs afero.Fs, opts Options, resolver registry.Resolver) *Migrator {
	return &Migrator{
		fs:           fs,
		opts:         opts,
		resolver:     resolver,
		requireClean: gitstate.RequireClean,
	}
}

// Result reports what a run did.
type Result struct {
	RunID    string
	Root     string
	Plan     *Plan
	Written  []string // absolute paths, in write order
	Manifest []manifest.Change
	DryRun   bool
}

// Run migrates the plugin package at root. Documents are written one at a
// time; on failure the ones already written stay on disk.
func (m *Migrator) Run(ctx context.Context, root string) (*Result, error) {
	runID := uuid.NewString()
	ctx = logger.WithComponent(logger.WithRunID(ctx, runID), "migrate")
	log := logger.LoggerFromContext(ctx)
	start := time.Now()

	result := &Result{RunID: runID, Root: root, DryRun: m.opts.DryRun}

	if err := m.opts.checkLayout(); err != nil {
		return result, err
	}

	if m.opts.RequireClean && !m.opts.DryRun {
		state, err := m.requireClean(root)
		if err != nil {
			return result, err
		}
		if !state.Repository {
			log.Warnw("Not a git repository, generated files cannot be reviewed with git",
				logger.FieldRoot, root)
		}
	}

	plan, err := m.Plan(ctx, root)
	if err != nil {
		return result, err
	}
	result.Plan = plan

	if m.opts.DryRun {
		log.Infow("Dry run, nothing written",
			logger.FieldCount, len(plan.Documents))
		return result, nil
	}

	for _, doc := range plan.Documents {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "migration cancelled")
		}
		path := m.path(root, doc.Path)
		if err := m.write(path, doc.Content); err != nil {
			return result, err
		}
		result.Written = append(result.Written, path)
		log.Debugw("Wrote document", logger.FieldFile, path)
	}

	if m.opts.UpdateManifest {
		changes, err := m.updateManifest(ctx, log, root)
		if err != nil {
			return result, err
		}
		result.Manifest = changes
	}

	log.Infow("Migration complete",
		logger.FieldPluginID, plan.PluginID,
		logger.FieldCount, len(result.Written),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return result, nil
}

// Plan reads the legacy source under root and plans the documents.
func (m *Migrator) Plan(ctx context.Context, root string) (*Plan, error) {
	log := logger.LoggerFromContext(ctx)

	src, err := m.readSource(root)
	if err != nil {
		return nil, err
	}

	plan := NewPlan(src, m.opts.Layout)
	logPlan(log, plan)
	return plan, nil
}

func (m *Migrator) readSource(root string) (string, error) {
	path := m.path(root, m.opts.SourceFile)
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read legacy plugin source %s", path)
		if errors.Is(err, os.ErrNotExist) {
			err = errors.WithHint(err, "pass the plugin package root, or set source.file in plugmig.toml")
		}
		return "", err
	}
	return string(data), nil
}

func (m *Migrator) write(path, content string) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := afero.WriteFile(m.fs, path, []byte(content), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (m *Migrator) updateManifest(ctx context.Context, log *zap.SugaredLogger, root string) ([]manifest.Change, error) {
	if m.resolver == nil {
		return nil, errors.New("manifest update requested without a registry resolver")
	}

	versions, err := registry.LatestAll(ctx, m.resolver, manifest.Dependencies...)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to look up latest versions"),
			"check registry.url, or pass --skip-manifest to leave package.json alone",
		)
	}

	path := m.path(root, m.opts.ManifestFile)
	changes, err := manifest.Update(m.fs, path, m.opts.Layout.Entry(), versions)
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		log.Infow("Manifest dependency",
			logger.FieldPackage, c.Package,
			logger.FieldVersion, c.To,
			"kept", c.Kept)
	}
	return changes, nil
}

func (m *Migrator) path(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func logPlan(log *zap.SugaredLogger, plan *Plan) {
	for _, k := range []struct {
		kind  extract.Kind
		names []string
	}{
		{extract.KindApi, plan.Exports.Api},
		{extract.KindCard, plan.Exports.Card},
		{extract.KindContent, plan.Exports.Content},
	} {
		if len(k.names) == 0 {
			log.Infow("No declarations of this kind",
				logger.FieldKind, k.kind)
			continue
		}
		log.Infow("Extracted declarations",
			logger.FieldKind, k.kind,
			logger.FieldCount, len(k.names),
			logger.FieldExports, k.names)
	}

	for _, s := range plan.Skipped {
		log.Debugw("Skipped candidate declaration",
			logger.FieldKind, s.Kind,
			logger.FieldShape, s.Shape,
			logger.FieldOffset, s.Offset,
			logger.FieldLine, s.Line,
			logger.FieldReason, s.Reason)
	}

	for _, kind := range extract.Kinds {
		if dups := plan.Duplicates[kind]; len(dups) > 0 {
			log.Warnw("Duplicate export names in generated document",
				logger.FieldKind, kind,
				logger.FieldExports, dups)
		}
	}

	if plan.PluginID == extract.FallbackPluginID {
		log.Infow("No plugin id found, using fallback",
			logger.FieldPluginID, plan.PluginID)
	}
	if !plan.LegacyImportReplaced {
		log.Debugw("Legacy createPlugin import not found")
	}
}
