// Package eligibility decides whether a KNU entry may receive a reward.
package eligibility

import (
	"fmt"

	"github.com/teknia/knud/internal/knu"
)

// Policy defines the eligibility gate. Checks are applied in a fixed
// order (status, artifacts, validation) and the first failure wins.
type Policy struct {
	RequiredStatus    []knu.Status
	RequireArtifacts  bool
	RequireValidation bool
}

// DefaultPolicy requires an accepted or merged status, at least one
// evidence artifact, and a completed validation.
func DefaultPolicy() Policy {
	return Policy{
		RequiredStatus:    []knu.Status{knu.StatusAccepted, knu.StatusMerged},
		RequireArtifacts:  true,
		RequireValidation: true,
	}
}

// Check reports whether the entry is eligible under the policy. An
// ineligible entry gets a reason naming the violated rule; an eligible
// entry gets an empty reason. Pure function of (entry, policy).
func Check(entry knu.Entry, policy Policy) (bool, string) {
	if !statusAllowed(entry.Status, policy.RequiredStatus) {
		return false, fmt.Sprintf("status '%s' not in required: %v", entry.Status, policy.RequiredStatus)
	}

	if policy.RequireArtifacts && len(entry.Artifacts) == 0 {
		return false, "no artifacts provided (required)"
	}

	if policy.RequireValidation {
		if entry.ValidatedBy == "" {
			return false, "no validator specified (required)"
		}
		if entry.ValidatedAt == "" {
			return false, "no validation timestamp (required)"
		}
	}

	return true, ""
}

func statusAllowed(status knu.Status, required []knu.Status) bool {
	for _, s := range required {
		if status == s {
			return true
		}
	}
	return false
}
