// Package fileutils holds small filesystem helpers shared by the commands.
package fileutils

import (
	"github.com/spf13/afero"
)

func FileExists(path string, filesystem ...afero.Fs) bool {
	exists, _ := afero.Exists(InitFilesystem(filesystem...), path)
	return exists
}

func DirExists(path string, filesystem ...afero.Fs) bool {
	exists, _ := afero.DirExists(InitFilesystem(filesystem...), path)
	return exists
}

// InitFilesystem returns the injected filesystem or the OS one.
func InitFilesystem(filesystem ...afero.Fs) afero.Fs {
	if len(filesystem) > 0 && filesystem[0] != nil {
		return filesystem[0]
	}

	return afero.NewOsFs()
}
