package types

import "fmt"

// ExistingPolicy decides what the rewriter does when the modified copy
// already exists.
type ExistingPolicy int

const (
	// ExistingReuse writes into the existing file in place. A missing file is
	// created empty first.
	ExistingReuse ExistingPolicy = iota
	// ExistingOverwrite writes a temp file and renames it over the old copy.
	ExistingOverwrite
	// ExistingFail refuses to touch an existing copy.
	ExistingFail
)

var policyNames = map[ExistingPolicy]string{
	ExistingReuse:     "reuse",
	ExistingOverwrite: "overwrite",
	ExistingFail:      "fail",
}

func (p ExistingPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ExistingPolicy(%d)", int(p))
}

// ParseExistingPolicy converts a config or flag value.
func ParseExistingPolicy(s string) (ExistingPolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return ExistingReuse, fmt.Errorf("unknown existing-file policy %q (want reuse, overwrite or fail)", s)
}

// ExistingPolicyNames lists the accepted policy names.
func ExistingPolicyNames() []string {
	return []string{"reuse", "overwrite", "fail"}
}
