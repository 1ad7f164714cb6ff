// Package stdtext normalizes Danish invoice and service lines into a
// canonical, de-identified form. The Rewriter facade wires the pipeline
// stages over a shared vocabulary, city gazetteer and corpus model; all
// heavy state is loaded once and read concurrently, with the corpus model
// swapped atomically on rebuild.
package stdtext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/stdtext/pkg/stdtext/abbrev"
	"github.com/cognicore/stdtext/pkg/stdtext/actions"
	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/corpus"
	"github.com/cognicore/stdtext/pkg/stdtext/counts"
	"github.com/cognicore/stdtext/pkg/stdtext/entities"
	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/normalize"
	"github.com/cognicore/stdtext/pkg/stdtext/patterns"
	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/refine"
	"github.com/cognicore/stdtext/pkg/stdtext/source"
	"github.com/cognicore/stdtext/pkg/stdtext/spell"
	"github.com/cognicore/stdtext/pkg/stdtext/store"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

// Options configures a Rewriter instance.
type Options struct {
	// Config tunes the stages; most callers start from config.Default().
	Config config.Config
	// Vocabulary is the frequency dictionary behind spelling. May be nil.
	Vocabulary *vocab.Table
	// Custom is the runtime custom word overlay. Nil creates an empty one.
	Custom *vocab.Set
	// Words persists the custom dictionary. Nil disables the word
	// operations.
	Words vocab.CustomStore
	// Cities is the lowercase city gazetteer.
	Cities []string
	// Corpus is the live model handle. Nil creates an empty one.
	Corpus *corpus.Handle
	// Store persists model snapshots across restarts. May be nil.
	Store store.ModelStore
	// LoadRows overrides the corpus source used by Rebuild. Nil reads
	// Config.Model.SourcePath with the configured column and encoding.
	LoadRows func() ([]string, error)
}

// Rewriter is the main normalization engine facade.
type Rewriter struct {
	cfg        config.Config
	normalizer *normalize.Normalizer
	runner     *pipeline.Runner
	provider   *spell.Provider
	handle     *corpus.Handle
	store      store.ModelStore
	words      vocab.CustomStore
	custom     *vocab.Set
	loadRows   func() ([]string, error)
}

// New creates a Rewriter with the given dependencies.
func New(opts Options) *Rewriter {
	cfg := opts.Config
	if cfg.Corpus == (config.Corpus{}) {
		cfg.Corpus = config.Default().Corpus
	}

	handle := opts.Corpus
	if handle == nil {
		handle = corpus.NewHandle(nil)
	}
	custom := opts.Custom
	if custom == nil {
		custom = vocab.NewSet()
	}

	var backends []spell.Backend
	if opts.Vocabulary != nil {
		backends = append(backends, spell.NewFreqDict("dictionary", opts.Vocabulary))
	}
	backends = append(backends, spell.NewFreqDict("corpus", corpus.UnigramSource{Handle: handle}))
	provider := spell.NewProvider(custom, backends...)

	rules := make([]actions.Rule, 0, len(cfg.Rules.FuzzyActions))
	for _, r := range cfg.Rules.FuzzyActions {
		dist := r.MaxDistance
		if dist == 0 {
			dist = cfg.Rules.MaxDistance
		}
		rules = append(rules, actions.Rule{
			Action:      r.Action,
			BaseWord:    r.BaseWord,
			MaxDistance: dist,
		})
	}

	stages := []pipeline.Stage{
		abbrev.NewExtractor(),
		actions.New(rules),
		entities.New(entities.Options{Oracle: provider, Cities: opts.Cities}),
		spell.NewStage(provider),
		counts.NewExtractor(),
		patterns.New(actionVerbs(cfg.Rules.FuzzyActions)),
		corpus.NewStage(handle, corpus.StageOptions{
			Phrase: corpus.PhraseOptions{
				MaxEditDistance: cfg.Corpus.MaxEditDistance,
				MinPrefixFreq:   cfg.Corpus.MinPrefixFreq,
				Dominance:       cfg.Corpus.Dominance,
				MaxAppend:       cfg.Corpus.MaxAppend,
			},
			ApplyNearest:       cfg.Model.ApplyNearest,
			NearestMaxDistance: cfg.Model.NearestMaxDistance,
		}),
	}
	if cfg.Refine.Enabled {
		refiner := refine.New(opts.Vocabulary, refine.Options{Ratio: cfg.Refine.Ratio})
		stages = append(stages, refine.NewStage(refiner))
	}

	loadRows := opts.LoadRows
	if loadRows == nil {
		model := cfg.Model
		loadRows = func() ([]string, error) {
			return source.Load(model.SourcePath, source.Options{
				TextColumn: model.TextColumn,
				Separator:  model.SeparatorRune(),
				Encoding:   model.Encoding,
			})
		}
	}

	return &Rewriter{
		cfg:        cfg,
		normalizer: normalize.New(abbrev.DefaultWhitelist()),
		runner:     pipeline.NewRunner(stages...),
		provider:   provider,
		handle:     handle,
		store:      opts.Store,
		words:      opts.Words,
		custom:     custom,
		loadRows:   loadRows,
	}
}

// actionVerbs joins the closed canonical verb set with the first word of
// every configured action phrase, so configured rules also anchor the
// pattern reorderer.
func actionVerbs(rules []config.ActionRule) []string {
	verbs := patterns.DefaultActionVerbs()
	seen := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		seen[v] = true
	}
	for _, r := range rules {
		fields := strings.Fields(strings.ToLower(r.Action))
		if len(fields) == 0 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		verbs = append(verbs, fields[0])
	}
	return verbs
}

// Close shuts down the Rewriter's store.
func (r *Rewriter) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Result is one rewrite outcome with its extraction details.
type Result struct {
	Input         string
	Output        string
	Stages        []pipeline.StageTrace
	Entities      map[string]string
	Abbreviations map[string]string
	Counts        map[string]token.CountRecord
	Examples      []Example
}

// Example is one nearest historical line.
type Example struct {
	Text     string
	Distance float64
}

// Rewrite normalizes one service line. Every stage is total, so Rewrite
// always produces a result; empty input yields empty output.
func (r *Rewriter) Rewrite(text string) Result {
	pc := pipeline.NewContext()

	s := r.normalizer.Tokens(text)
	pc.Record("normalize", s)
	s = r.runner.Run(pc, s)

	out := pipeline.Reinsert(pc, s, counts.Format, r.cfg.Output.Uppercase)

	return Result{
		Input:         text,
		Output:        out,
		Stages:        pc.Trace(),
		Entities:      mappingToMap(pc.Entities),
		Abbreviations: mappingToMap(pc.Abbrevs),
		Counts:        countsToMap(pc.Counts),
		Examples:      r.NearestExamples(text, r.cfg.Model.TopK),
	}
}

// NearestExamples returns the k nearest historical lines, nearest first.
// Without a fitted model, or for blank text, it returns nil.
func (r *Rewriter) NearestExamples(text string, k int) []Example {
	f := r.handle.Current()
	if f == nil || f.Len() == 0 || strings.TrimSpace(text) == "" {
		return nil
	}
	if k <= 0 {
		k = r.cfg.Model.TopK
	}
	if k <= 0 {
		k = 3
	}
	hits := f.Query(r.normalizer.Clean(text), k)
	out := make([]Example, len(hits))
	for i, h := range hits {
		out[i] = Example{Text: h.Text, Distance: h.Distance}
	}
	return out
}

// SpellingToken is one corrected token with ranked alternatives.
type SpellingToken struct {
	Token       string
	Correction  string
	Suggestions []string
}

// SpellingResult is the outcome of a spelling check.
type SpellingResult struct {
	Original  string
	Corrected string
	Tokens    []SpellingToken
}

// CheckSpelling runs only the spelling layer over the text: no extraction,
// no reordering. Tokens the corrector changed are reported with up to ten
// ranked suggestions each.
func (r *Rewriter) CheckSpelling(text string) SpellingResult {
	in := r.normalizer.Tokens(text)
	out := make(token.Stream, 0, len(in))
	var tokens []SpellingToken
	for _, t := range in {
		if !spell.Eligible(t.Text) {
			out = append(out, t)
			continue
		}
		fixed := r.provider.Correct(t.Text)
		if fixed != t.Text {
			tokens = append(tokens, SpellingToken{
				Token:       t.Text,
				Correction:  fixed,
				Suggestions: r.provider.Suggest(t.Text, 10),
			})
		}
		out = append(out, token.Plain(fixed))
	}
	return SpellingResult{
		Original:  text,
		Corrected: out.Render(),
		Tokens:    tokens,
	}
}

// ModelInfo describes the live corpus model and the active spelling backend.
type ModelInfo struct {
	Fitted  bool
	Records int
	BuiltAt time.Time
	Backend string
}

// ModelInfo reports the live model state.
func (r *Rewriter) ModelInfo() ModelInfo {
	return r.modelInfo(r.handle.Current())
}

func (r *Rewriter) modelInfo(f *corpus.Fitted) ModelInfo {
	info := ModelInfo{Backend: r.provider.BackendName()}
	if f.Len() > 0 {
		info.Fitted = true
		info.Records = f.Len()
		info.BuiltAt = f.BuiltAt()
	}
	return info
}

// Rebuild refits the corpus model from the configured source and persists a
// snapshot. A concurrent rebuild is rejected with ErrRebuildInProgress and a
// source failure leaves the prior model serving. A snapshot save failure is
// returned as an error after the fresh model is already live.
func (r *Rewriter) Rebuild(ctx context.Context) (ModelInfo, error) {
	fitted, err := r.handle.Rebuild(r.loadRows, corpus.FitOptions{
		Lowercase: r.cfg.Model.LowercaseTraining,
	})
	if err != nil {
		return ModelInfo{}, err
	}

	info := r.modelInfo(fitted)
	if r.store != nil {
		if err := r.store.Save(ctx, fitted.Snapshot()); err != nil {
			return info, fmt.Errorf("saving model snapshot: %w", err)
		}
	}
	return info, nil
}

// Restore loads the persisted snapshot into the live handle. With an empty
// store the ErrNotFound from Load passes through; callers typically ignore
// it on a first start.
func (r *Rewriter) Restore(ctx context.Context) error {
	if r.store == nil {
		return fmt.Errorf("no model store configured: %w", internalerr.ErrStoreUnavailable)
	}
	snap, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	fitted, err := corpus.FromSnapshot(snap)
	if err != nil {
		return err
	}
	r.handle.Swap(fitted)
	return nil
}

// AddWords inserts custom dictionary words, effective immediately for the
// spelling and entity checks.
func (r *Rewriter) AddWords(ctx context.Context, words []string) error {
	if r.words == nil {
		return fmt.Errorf("no dictionary word store configured: %w", internalerr.ErrStoreUnavailable)
	}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if err := r.words.Add(ctx, w); err != nil {
			return fmt.Errorf("storing word %q: %w", w, err)
		}
		r.custom.Add(w)
	}
	return nil
}

// RemoveWords deletes custom dictionary words.
func (r *Rewriter) RemoveWords(ctx context.Context, words []string) error {
	if r.words == nil {
		return fmt.Errorf("no dictionary word store configured: %w", internalerr.ErrStoreUnavailable)
	}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if err := r.words.Remove(ctx, w); err != nil {
			return fmt.Errorf("removing word %q: %w", w, err)
		}
		r.custom.Remove(w)
	}
	return nil
}

// Words lists the custom dictionary in sorted order.
func (r *Rewriter) Words(ctx context.Context) ([]string, error) {
	if r.words == nil {
		return nil, fmt.Errorf("no dictionary word store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return r.words.All(ctx)
}

// SyncWords replaces the in-memory custom dictionary with the persisted
// set. Without a word store it is a no-op.
func (r *Rewriter) SyncWords(ctx context.Context) error {
	if r.words == nil {
		return nil
	}
	words, err := r.words.All(ctx)
	if err != nil {
		return fmt.Errorf("loading custom words: %w", err)
	}
	r.custom.Replace(words)
	return nil
}

func mappingToMap(m *token.Mapping) map[string]string {
	out := make(map[string]string, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k] = v
	}
	return out
}

func countsToMap(m *token.CountMap) map[string]token.CountRecord {
	out := make(map[string]token.CountRecord, m.Len())
	for _, k := range m.Keys() {
		rec, _ := m.Get(k)
		out[k] = rec
	}
	return out
}
