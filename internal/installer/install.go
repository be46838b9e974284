// Package installer turns a Fabric loader artifact into a version descriptor on disk.
package installer

import (
	"context"

	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/meza/fabric-installer/internal/lifecycle"
	"github.com/meza/fabric-installer/internal/logger"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
)

type Installer struct {
	Fs       afero.Fs
	Location minecraft.Location
	Locker   Locker
	Logger   *logger.Logger
}

type Result struct {
	ID       string
	Path     string
	Warnings []error
}

// New picks the locker matching the filesystem: an OS lock for the real
// filesystem and an in-process lock otherwise.
func New(fs afero.Fs, location minecraft.Location, log *logger.Logger) *Installer {
	var locker Locker = NewMemoryLocker()
	if _, ok := fs.(*afero.OsFs); ok {
		locker = NewFileLocker()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Installer{Fs: fs, Location: location, Locker: locker, Logger: log}
}

// Install writes the descriptor for bundle and returns the id it was installed under.
func (i *Installer) Install(ctx context.Context, bundle fabric.LoaderArtifact, options Options) (result Result, err error) {
	ctx, span := perf.StartSpan(ctx, "installer.install",
		perf.WithAttributes(
			attribute.String("loader", bundle.Loader.Version),
			attribute.String("intermediary", bundle.Intermediary.Version),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	side := options.Side.orDefault()

	resolution, err := ResolveVersionID(bundle, options)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(attribute.String("id", resolution.ID), attribute.String("side", side.String()))
	i.log().Debugf("resolved version id %s inheriting from %s", resolution.ID, resolution.InheritsFrom)

	libraries := BuildLibraries(bundle, resolution.Yarn, side)

	var warnings []error
	if resolution.InheritsFrom == "" {
		warnings = append(warnings, &InheritsFromUnresolvedError{ID: resolution.ID})
		i.log().Warn(i18n.T("installer.warning.inherits_from_unresolved", i18n.Tvars{
			Data: &i18n.TData{"id": resolution.ID},
		}))
	}

	mainClass, ok := SelectMainClass(bundle.LauncherMeta.MainClass, side)
	if !ok {
		unresolved := &MainClassUnresolvedError{Side: side}
		if options.StrictMainClass {
			return Result{}, unresolved
		}
		warnings = append(warnings, unresolved)
		i.log().Warn(i18n.T("installer.warning.main_class_unresolved", i18n.Tvars{
			Data: &i18n.TData{"side": side.String(), "id": resolution.ID},
		}))
	}

	data, err := NewVersionDescriptor(resolution, mainClass, libraries).Encode(options.LibrariesFormat)
	if err != nil {
		return Result{}, err
	}

	targetPath := i.Location.VersionJSONPath(resolution.ID)

	locker := i.Locker
	if locker == nil {
		locker = NewMemoryLocker()
	}
	unlock, err := locker.Lock(ctx, targetPath)
	if err != nil {
		return Result{}, err
	}
	release := lifecycle.Guard("installer.lock", func() { _ = unlock() })
	defer func() {
		release()
		if unlockErr := unlock(); unlockErr != nil && err == nil {
			err = &FileSystemError{Op: "unlock", Path: targetPath, Err: unlockErr}
		}
	}()

	writtenPath, err := NewWriter(i.Fs, i.Location.Root).Write(ctx, targetPath, data)
	if err != nil {
		return Result{}, err
	}
	i.log().Debugf("wrote %s", writtenPath)

	return Result{ID: resolution.ID, Path: writtenPath, Warnings: warnings}, nil
}

func (i *Installer) log() *logger.Logger {
	if i.Logger == nil {
		return logger.Discard()
	}
	return i.Logger
}
