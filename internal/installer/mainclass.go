package installer

import (
	"github.com/meza/fabric-installer/internal/fabric"
)

// SelectMainClass picks the entry point for side. A per-side value without the
// side falls back to reading it as a plain name. The boolean is false when
// nothing could be resolved and the returned name is empty.
func SelectMainClass(mainClass fabric.MainClass, side Side) (string, bool) {
	if mainClass.IsPerSide() {
		if name, ok := mainClass.ForSide(side.orDefault().String()); ok {
			return name, true
		}
	}
	return mainClass.Scalar()
}
