package configs

import "github.com/reusee/dscope"

type Module struct {
	dscope.Module
}

// Files are the deployment files to load.
type Files []string

func (Module) Files() Files {
	return Discover(FileName)
}

func (Module) Loader(files Files) Loader {
	return NewLoader(files, Schema)
}
