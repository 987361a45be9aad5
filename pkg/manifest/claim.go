package manifest

import "fmt"

func NewClaim(owner, target string) Claim {
	return Claim{
		Owner:  owner,
		Target: target,
	}
}

// Claim represents an artefact's claim on a path inside the output directory
type Claim struct {
	Owner  string
	Target string
}

func (c Claim) String() string {
	return fmt.Sprintf("Claim{Owner: %s, Target: %s}", c.Owner, c.Target)
}
