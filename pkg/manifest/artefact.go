package manifest

import "io"

// Builder writes the contents of an artefact.
type Builder func(w io.Writer) error

type PostProcessor func(claim Claim, next Builder) Builder

// Artefact represents a build artefact
type Artefact struct {
	Claim   Claim
	Builder Builder
}

func (a Artefact) Post(pp PostProcessor) Artefact {
	if pp == nil {
		return a
	}

	return Artefact{
		Claim:   a.Claim,
		Builder: pp(a.Claim, a.Builder),
	}
}

func TextArtefact(claim Claim, text string) Artefact {
	return Artefact{
		Claim: claim,
		Builder: func(w io.Writer) error {
			_, err := io.WriteString(w, text)
			return err
		},
	}
}
