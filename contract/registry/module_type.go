package registry

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ModuleType classifies the modules attached to a security token
type ModuleType uint8

// module types
const (
	Permission ModuleType = 1
	Transfer   ModuleType = 2
	STO        ModuleType = 3
	Dividends  ModuleType = 4
	Burn       ModuleType = 5
)

var moduleTypeNames = map[ModuleType]string{
	Permission: "Permission",
	Transfer:   "Transfer",
	STO:        "STO",
	Dividends:  "Dividends",
	Burn:       "Burn",
}

func (t ModuleType) String() string {
	if name, has := moduleTypeNames[t]; has {
		return name
	}
	return "ModuleType(" + strconv.Itoa(int(t)) + ")"
}

// ParseModuleType accepts the name of a module type, case insensitive, or its code
func ParseModuleType(s string) (ModuleType, error) {
	s = strings.TrimSpace(s)
	for t, name := range moduleTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n == 0 {
		return 0, errors.Wrapf(ErrInvalidModuleType, "%q", s)
	}
	return ModuleType(n), nil
}
