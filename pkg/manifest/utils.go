package manifest

import (
	"path"
	"path/filepath"
	"strings"
)

// cleanTarget normalises a claim target and rejects paths that leave the
// output directory.
func cleanTarget(target string) (string, bool) {
	rel := path.Clean(filepath.ToSlash(target))
	if rel == "." || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// makeArtefacts converts a list of artefacts into a map, and a collection of conflicts.
func makeArtefacts(as []Artefact) (artefacts map[string]Artefact, conflicts map[string][]Claim) {
	artefacts = make(map[string]Artefact)
	conflicts = make(map[string][]Claim)

	for _, a := range as {
		conflicts[a.Claim.Target] = append(conflicts[a.Claim.Target], a.Claim)
		artefacts[a.Claim.Target] = a
	}
	for d, cs := range conflicts {
		if len(cs) <= 1 {
			delete(conflicts, d)
		}
	}

	return artefacts, conflicts
}
