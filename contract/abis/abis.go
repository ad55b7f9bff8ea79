// Package abis embeds the interface descriptors of the deployed contracts.
// Each file is a build artifact holding at least the "contractName" and "abi"
// keys; the descriptors must match the deployed bytecode exactly.
package abis

import (
	"bytes"
	"embed"
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

//go:embed *.json
var files embed.FS

// descriptors
var (
	ERC20                   = mustLoad("ERC20.json")
	ERC20DividendCheckpoint = mustLoad("ERC20DividendCheckpoint.json")
	EtherDividendCheckpoint = mustLoad("EtherDividendCheckpoint.json")
	ModuleRegistry          = mustLoad("ModuleRegistry.json")
	ModuleFactory           = mustLoad("ModuleFactory.json")
)

type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// Load parses the abi of the embedded artifact of the file name
func Load(name string) (abi.ABI, error) {
	bs, err := files.ReadFile(name)
	if err != nil {
		return abi.ABI{}, errors.WithStack(err)
	}
	return Parse(bs)
}

// Parse parses the abi of the artifact json
func Parse(bs []byte) (abi.ABI, error) {
	var a artifact
	if err := json.Unmarshal(bs, &a); err != nil {
		return abi.ABI{}, errors.WithStack(err)
	}
	if len(a.ABI) == 0 {
		return abi.ABI{}, errors.Errorf("artifact %q has no abi", a.ContractName)
	}
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "artifact %q", a.ContractName)
	}
	return parsed, nil
}

func mustLoad(name string) abi.ABI {
	parsed, err := Load(name)
	if err != nil {
		panic(err)
	}
	return parsed
}
