package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed exempt_paths.yaml
var exemptPathsFile []byte

type exemptPolicy struct {
	ExemptPaths []string `yaml:"exempt_paths"`
}

// DefaultExemptPaths returns the shipped auth-exemption list. The policy
// is an embedded file so the default set is reviewable in one place and
// versioned with the binary; AUTH_EXEMPT_PATHS replaces it wholesale.
func DefaultExemptPaths() []string {
	var policy exemptPolicy
	if err := yaml.Unmarshal(exemptPathsFile, &policy); err != nil {
		// The embedded file is validated by tests; failing here means a
		// broken build, not a runtime condition.
		panic(fmt.Sprintf("config: invalid embedded exempt_paths.yaml: %v", err))
	}
	return policy.ExemptPaths
}
