package ir

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// IRVersion is the IR format version produced by this package's tooling.
const IRVersion = "0.1.0"

// CheckVersion reports whether version satisfies constraint
// (e.g. ">= 0.1.0, < 1.0.0"). It is opt-in: the default pipeline does not
// enforce any version format.
func CheckVersion(version, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("version %s does not satisfy %s", version, constraint)
	}
	return nil
}

// ParseConstraint validates a constraint string without checking a version.
func ParseConstraint(constraint string) error {
	if _, err := semver.NewConstraint(constraint); err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return nil
}
