package corpus

import (
	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// StageOptions configures the corpus pipeline stage.
type StageOptions struct {
	Phrase PhraseOptions
	// ApplyNearest replaces the working text with the best corpus neighbor.
	ApplyNearest bool
	// NearestMaxDistance bounds the replacement; a neighbor further away is
	// ignored.
	NearestMaxDistance float64
}

// Stage applies corpus-derived corrections using whatever model is live on
// the handle. With no fitted model the stage passes streams through.
type Stage struct {
	handle *Handle
	opts   StageOptions
}

// NewStage builds the stage around a model handle.
func NewStage(h *Handle, opts StageOptions) *Stage {
	return &Stage{handle: h, opts: opts}
}

// Name returns the stage name.
func (s *Stage) Name() string { return "corpus" }

// Transform runs the phrase corrector and, when enabled and the stream holds
// no placeholders, snaps the whole text to its nearest corpus row.
func (s *Stage) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	f := s.handle.Current()
	if f == nil || f.Len() == 0 {
		return in
	}
	out := f.CorrectPhrase(in, s.opts.Phrase)
	if s.opts.ApplyNearest && !out.HasPlaceholders() {
		hits := f.Query(out.Render(), 1)
		if len(hits) > 0 && hits[0].Distance <= s.opts.NearestMaxDistance {
			return token.Fields(hits[0].Text)
		}
	}
	return out
}
