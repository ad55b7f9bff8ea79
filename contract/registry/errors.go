package registry

import (
	"fmt"

	"github.com/pkg/errors"
)

// errors
var (
	ErrModuleFactoryNotFound = errors.New("module factory not found")
	ErrInvalidModuleType     = errors.New("invalid module type")
)

// ModuleFactoryNotFoundError names the module no registered factory declares
type ModuleFactoryNotFoundError struct {
	Name string
}

func (e *ModuleFactoryNotFoundError) Error() string {
	return fmt.Sprintf("module factory not found: %q", e.Name)
}

// Is matches ErrModuleFactoryNotFound
func (e *ModuleFactoryNotFoundError) Is(target error) bool {
	return target == ErrModuleFactoryNotFound
}
