package utils

import (
	"path/filepath"
	"runtime"
)

// ResolveFile joins a module relative path, such as "referenceframe/testdata/scene.json", onto the root of this
// module's source tree. Tests use it to load fixtures independently of their working directory.
func ResolveFile(fn string) string {
	_, here, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate utils source file")
	}
	root, err := filepath.Abs(filepath.Join(filepath.Dir(here), ".."))
	if err != nil {
		panic(err)
	}
	return filepath.Join(root, fn)
}
