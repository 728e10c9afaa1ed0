package cli

import (
	"fmt"
	"os"

	"github.com/modelcore/structbind/internal/cueload"
	"github.com/modelcore/structbind/internal/schema"
)

// loadRegistry parses the CUE model file and registers every declared type
// into a fresh registry.
func loadRegistry(path string) (*schema.Registry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("model file not found: %s", path), err)
	}
	decls, err := cueload.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading model", err)
	}
	if len(decls) == 0 {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("model file %s declares no types", path), nil)
	}
	reg := schema.NewRegistry()
	for _, decl := range decls {
		if err := reg.Register(decl); err != nil {
			return nil, WrapExitError(ExitCommandError, "registering model types", err)
		}
	}
	return reg, nil
}
