package evaluation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// Check is one heuristic quality check of an extracted entity
type Check string

const (
	CheckPresence         Check = "presence"
	CheckType             Check = "type"
	CheckBoundaries       Check = "boundaries"
	CheckNoOverExtraction Check = "no_over_extraction"
)

// Checks lists the quality checks in report order
var Checks = []Check{CheckPresence, CheckType, CheckBoundaries, CheckNoOverExtraction}

// DefaultCheckWeights weight the checks in the global quality score
var DefaultCheckWeights = map[Check]float64{
	CheckPresence:         0.375,
	CheckType:             0.25,
	CheckBoundaries:       0.1875,
	CheckNoOverExtraction: 0.1875,
}

// Stratum groups entities by how often they occur in the corpus
type Stratum string

const (
	StratumFrequent Stratum = "frequent"
	StratumMedium   Stratum = "medium"
	StratumRare     Stratum = "rare"
)

var strata = []Stratum{StratumFrequent, StratumMedium, StratumRare}

// StratumOf returns frequent for more than 5 occurrences, medium for 2 to 5 and rare otherwise
func StratumOf(occurrences int) Stratum {
	switch {
	case occurrences > 5:
		return StratumFrequent
	case occurrences >= 2:
		return StratumMedium
	default:
		return StratumRare
	}
}

var (
	personIndicators = []string{
		"monsieur", "madame", "mademoiselle", "mr.", "mrs.", "miss", "dr.", "prof.",
		"sinjoro", "herrn", "frau",
	}
	organizationIndicators = []string{
		"société", "societe", "league", "commission", "committee", "association",
		"university", "université", "chamber", "chambre", "conseil", "council",
		"secrétariat", "secretariat", "bureau", "ministry", "ministère", "académie",
		"academy", "institute", "institut",
	}
	boundaryWords = map[string]bool{
		"le": true, "la": true, "les": true, "l'": true, "the": true,
		"monsieur": true, "madame": true, "professor": true, "docteur": true,
	}
	parasites = []string{
		"le professeur", "la", "les", "the", "monsieur le", "madame la", "mademoiselle",
		"eminenta sinjoro", "sioro", "herrn", "students", "parents", "scholars",
	}
)

// AuditEntity is an extracted entity aggregated over the corpus
type AuditEntity struct {
	Text        string            `json:"text"`
	Type        model.EntityType  `json:"type"`
	Occurrences int               `json:"occurrences"`
	Documents   []*model.Document `json:"documents"`
}

// AggregateMentions merges mentions of the same type and normalized text across
// documents. The first seen text is kept, occurrences are summed and documents
// are listed once in first seen order.
func AggregateMentions(mentions []*model.Mention) []AuditEntity {
	type key struct {
		t    model.EntityType
		text string
	}
	index := map[key]int{}
	entities := []AuditEntity{}
	for _, m := range mentions {
		if m == nil {
			continue
		}
		k := key{m.Type, helper.NormalizeText(m.Text)}
		i, ok := index[k]
		if !ok {
			i = len(entities)
			index[k] = i
			entities = append(entities, AuditEntity{Text: m.Text, Type: m.Type})
		}
		e := &entities[i]
		e.Occurrences += m.Count()

		doc := &model.Document{Folder: m.Folder, Name: m.Document}
		known := false
		for _, d := range e.Documents {
			if d.Key() == doc.Key() {
				known = true
				break
			}
		}
		if !known {
			e.Documents = append(e.Documents, doc)
		}
	}
	return entities
}

// StratifiedSample draws up to size entities from each stratum.
// The draw is deterministic for a given seed and input order.
func StratifiedSample(entities []AuditEntity, size int, seed int64) []AuditEntity {
	byStratum := map[Stratum][]AuditEntity{}
	for _, e := range entities {
		s := StratumOf(e.Occurrences)
		byStratum[s] = append(byStratum[s], e)
	}

	sample := []AuditEntity{}
	for _, s := range strata {
		group := byStratum[s]
		rng := rand.New(rand.NewSource(seed))
		for _, i := range rng.Perm(len(group))[:min(size, len(group))] {
			sample = append(sample, group[i])
		}
	}
	return sample
}

// CheckResult is the outcome of one check
type CheckResult struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// EntityAudit holds the check results of one sampled entity
type EntityAudit struct {
	Entity    AuditEntity           `json:"entity"`
	Stratum   Stratum               `json:"stratum"`
	Results   map[Check]CheckResult `json:"results"`
	AllPassed bool                  `json:"all_passed"`
}

// FindContexts returns up to limit normalized sentences of text containing the
// normalized entity.
func FindContexts(entity string, text string, limit int) []string {
	needle := helper.NormalizeText(entity)
	contexts := []string{}
	if needle == "" {
		return contexts
	}
	for _, sentence := range pipeline.SplitSentences(text) {
		if len(contexts) >= limit {
			break
		}
		normalized := helper.NormalizeText(sentence)
		if strings.Contains(normalized, needle) {
			contexts = append(contexts, normalized)
		}
	}
	return contexts
}

// ValidateType applies keyword heuristics: a person must not carry an
// organization keyword, an organization must not look like a person.
func ValidateType(text string, entityType model.EntityType) CheckResult {
	lower := strings.ToLower(text)
	org := containsAny(lower, organizationIndicators)
	person := containsAny(lower, personIndicators)

	switch entityType {
	case model.EntityTypePerson:
		if org != "" {
			return CheckResult{Detail: fmt.Sprintf("organization keyword %q in a person", org)}
		}
	case model.EntityTypeOrganization:
		if person != "" && org == "" {
			return CheckResult{Detail: fmt.Sprintf("person keyword %q in an organization", person)}
		}
	}
	return CheckResult{Passed: true, Detail: "type consistent"}
}

// ValidateNoOverExtraction fails when the entity contains an article, a title or
// a generic group word as a whole word.
func ValidateNoOverExtraction(text string) CheckResult {
	normalized := helper.NormalizeText(text)
	padded := " " + normalized + " "
	for _, p := range parasites {
		if strings.Contains(padded, " "+helper.NormalizeText(p)+" ") {
			return CheckResult{Detail: fmt.Sprintf("parasite word %q", p)}
		}
	}
	for _, word := range strings.Fields(normalized) {
		if strings.HasPrefix(word, "l'") {
			return CheckResult{Detail: fmt.Sprintf("elided article in %q", word)}
		}
	}
	return CheckResult{Passed: true, Detail: "no parasite"}
}

// ValidateBoundaries fails when the word right before the entity in one of the
// contexts is an article or a title, which means the extraction was cut.
func ValidateBoundaries(entity string, contexts []string) CheckResult {
	needle := helper.NormalizeText(entity)
	for _, c := range contexts {
		i := strings.Index(c, needle)
		if i < 0 {
			continue
		}
		before := strings.Fields(c[:i])
		if len(before) == 0 {
			continue
		}
		last := before[len(before)-1]
		if boundaryWords[last] {
			return CheckResult{Detail: fmt.Sprintf("preceded by %q", last)}
		}
	}
	return CheckResult{Passed: true, Detail: "boundaries ok"}
}

func containsAny(text string, words []string) string {
	for _, w := range words {
		if strings.Contains(text, w) {
			return w
		}
	}
	return ""
}

// AuditConfig controls sampling and the checks of a quality audit
type AuditConfig struct {
	SampleSize        int
	Seed              int64
	Confidence        float64
	Weights           map[Check]float64
	PresenceDocuments int
	BoundaryDocuments int
	BoundaryContexts  int
}

// DefaultAuditConfig samples 50 entities per stratum with seed 42 at 95% confidence
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		SampleSize:        50,
		Seed:              42,
		Confidence:        0.95,
		Weights:           DefaultCheckWeights,
		PresenceDocuments: 10,
		BoundaryDocuments: 3,
		BoundaryContexts:  2,
	}
}

// Auditor checks a sample of extracted entities against their source documents
type Auditor struct {
	source pipeline.DocumentSource
	config AuditConfig
	log    *slog.Logger
}

// NewAuditor creates an auditor reading document texts from source
func NewAuditor(source pipeline.DocumentSource, config AuditConfig, logger *slog.Logger) (*Auditor, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: document source is nil", model.ErrInvalidConfig)
	}
	if config.SampleSize <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", model.ErrInvalidConfig, config.SampleSize)
	}
	if config.Confidence <= 0 || config.Confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence must be in (0, 1), got %v", model.ErrInvalidConfig, config.Confidence)
	}
	if len(config.Weights) == 0 {
		config.Weights = DefaultCheckWeights
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{source: source, config: config, log: logger}, nil
}

// Audit samples the entities of each type, runs all checks and summarizes them
// per type and overall.
func (a *Auditor) Audit(ctx context.Context, entities []AuditEntity, types []model.EntityType) (*QualityReport, error) {
	cache := pipeline.NewDocumentCache(a.source)
	report := &QualityReport{
		Confidence: a.config.Confidence,
		Types:      types,
		ByType:     map[model.EntityType]QualitySummary{},
		Entities:   []EntityAudit{},
	}

	for _, t := range types {
		ofType := []AuditEntity{}
		for _, e := range entities {
			if e.Type == t {
				ofType = append(ofType, e)
			}
		}
		sample := StratifiedSample(ofType, a.config.SampleSize, a.config.Seed)
		a.log.Debug("Audit sample drawn", slog.String("type", string(t)), slog.Int("entities", len(ofType)), slog.Int("sample", len(sample)))

		audits := make([]EntityAudit, 0, len(sample))
		for _, e := range sample {
			if err := ctx.Err(); err != nil {
				return nil, helper.NewError("audit entities", err)
			}
			audits = append(audits, a.auditEntity(ctx, cache, e))
		}
		report.ByType[t] = summarize(audits, a.config.Weights, a.config.Confidence)
		report.Entities = append(report.Entities, audits...)
	}
	report.Overall = summarize(report.Entities, a.config.Weights, a.config.Confidence)

	a.log.Info(
		"Audit finished",
		slog.Int("sample", report.Overall.N),
		slog.Float64("global_score", report.Overall.GlobalScore),
		slog.Float64("margin", report.Overall.GlobalMargin),
	)
	return report, nil
}

func (a *Auditor) auditEntity(ctx context.Context, cache *pipeline.DocumentCache, e AuditEntity) EntityAudit {
	results := map[Check]CheckResult{
		CheckPresence:         {Detail: "not found in source documents"},
		CheckType:             ValidateType(e.Text, e.Type),
		CheckBoundaries:       {Passed: true, Detail: "no source document"},
		CheckNoOverExtraction: ValidateNoOverExtraction(e.Text),
	}

	boundaryContexts := []string{}
	boundaryDocuments := 0
	for i, doc := range e.Documents {
		if i >= max(a.config.PresenceDocuments, a.config.BoundaryDocuments) {
			break
		}
		text, err := cache.Load(ctx, doc)
		if err != nil {
			a.log.Debug("Audit document unavailable", slog.String("document", doc.Key()), slog.Any("error", err))
			continue
		}
		contexts := FindContexts(e.Text, pipeline.CleanMarkdown(text), 5)

		if i < a.config.PresenceDocuments && len(contexts) > 0 && !results[CheckPresence].Passed {
			results[CheckPresence] = CheckResult{Passed: true, Detail: "found in " + doc.Key()}
		}
		if i < a.config.BoundaryDocuments {
			boundaryDocuments++
			boundaryContexts = append(boundaryContexts, contexts[:min(a.config.BoundaryContexts, len(contexts))]...)
		}
	}
	if boundaryDocuments > 0 {
		results[CheckBoundaries] = ValidateBoundaries(e.Text, boundaryContexts)
	}

	allPassed := true
	for _, c := range Checks {
		allPassed = allPassed && results[c].Passed
	}
	return EntityAudit{
		Entity:    e,
		Stratum:   StratumOf(e.Occurrences),
		Results:   results,
		AllPassed: allPassed,
	}
}

// Proportion is a pass count over a sample with its confidence margin
type Proportion struct {
	Count  int     `json:"count"`
	Rate   float64 `json:"rate"`
	Margin float64 `json:"margin"`
}

// QualitySummary aggregates the checks of a set of audited entities
type QualitySummary struct {
	N            int                  `json:"n"`
	Checks       map[Check]Proportion `json:"checks"`
	AllPassed    Proportion           `json:"all_passed"`
	GlobalScore  float64              `json:"global_score"`
	GlobalMargin float64              `json:"global_margin"`
}

func summarize(audits []EntityAudit, weights map[Check]float64, confidence float64) QualitySummary {
	summary := QualitySummary{N: len(audits), Checks: map[Check]Proportion{}}
	proportion := func(count int) Proportion {
		if len(audits) == 0 {
			return Proportion{}
		}
		rate := float64(count) / float64(len(audits))
		return Proportion{Count: count, Rate: rate, Margin: ConfidenceInterval(rate, len(audits), confidence)}
	}

	allPassed := 0
	for _, audit := range audits {
		if audit.AllPassed {
			allPassed++
		}
	}
	summary.AllPassed = proportion(allPassed)

	totalWeight := 0.0
	for _, c := range Checks {
		passed := 0
		for _, audit := range audits {
			if audit.Results[c].Passed {
				passed++
			}
		}
		p := proportion(passed)
		summary.Checks[c] = p
		summary.GlobalScore += weights[c] * p.Rate
		totalWeight += weights[c]
	}
	if totalWeight > 0 {
		summary.GlobalScore /= totalWeight
	}
	summary.GlobalMargin = ConfidenceInterval(summary.GlobalScore, len(audits), confidence)
	return summary
}

// Grade labels a global quality score
func Grade(score float64) string {
	switch {
	case score >= 0.85:
		return "EXCELLENT"
	case score >= 0.75:
		return "GOOD"
	case score >= 0.65:
		return "FAIR"
	default:
		return "POOR"
	}
}

// QualityReport is the result of an audit
type QualityReport struct {
	Confidence float64                             `json:"confidence"`
	Types      []model.EntityType                  `json:"types"`
	Overall    QualitySummary                      `json:"overall"`
	ByType     map[model.EntityType]QualitySummary `json:"by_type"`
	Entities   []EntityAudit                       `json:"entities"`
}

// Failures returns up to limit audited entities that failed a check
func (r *QualityReport) Failures(limit int) []EntityAudit {
	failures := []EntityAudit{}
	for _, e := range r.Entities {
		if len(failures) >= limit {
			break
		}
		if !e.AllPassed {
			failures = append(failures, e)
		}
	}
	return failures
}

// WriteText writes the plain text quality report
func (r *QualityReport) WriteText(w io.Writer, generated time.Time) error {
	b := bufio.NewWriter(w)
	rule := strings.Repeat("=", 70)

	fmt.Fprintf(b, "%s\nNER QUALITY AUDIT\n%s\n\n", rule, rule)
	fmt.Fprintf(b, "Generated:  %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "Sample:     %d entities\n", r.Overall.N)
	fmt.Fprintf(b, "Confidence: %.0f%%\n\n", r.Confidence*100)

	fmt.Fprintf(b, "%s\nOVERALL\n%s\n\n", rule, rule)
	writeSummary(b, r.Overall)

	for _, t := range r.Types {
		fmt.Fprintf(b, "%s\n%s\n%s\n\n", rule, t, rule)
		writeSummary(b, r.ByType[t])
	}

	fmt.Fprintf(b, "%s\nFAILURES\n%s\n\n", rule, rule)
	failures := r.Failures(10)
	if len(failures) == 0 {
		fmt.Fprintf(b, "No failures.\n\n")
	}
	for i, f := range failures {
		fmt.Fprintf(b, "%d. %s (%s)\n", i+1, f.Entity.Text, f.Entity.Type)
		for _, c := range Checks {
			if result := f.Results[c]; !result.Passed {
				fmt.Fprintf(b, "   %s: %s\n", c, result.Detail)
			}
		}
		fmt.Fprintln(b)
	}

	fmt.Fprintf(b, "%s\nEND OF AUDIT\n%s\n", rule, rule)
	return b.Flush()
}

func writeSummary(w io.Writer, s QualitySummary) {
	for _, c := range Checks {
		p := s.Checks[c]
		fmt.Fprintf(w, "%-20s %5.1f%% ± %4.1f%%  (%d/%d)\n", c, p.Rate*100, p.Margin*100, p.Count, s.N)
	}
	fmt.Fprintf(w, "%-20s %5.1f%% ± %4.1f%%  (%d/%d)\n", "all_passed", s.AllPassed.Rate*100, s.AllPassed.Margin*100, s.AllPassed.Count, s.N)
	fmt.Fprintf(w, "%-20s %5.1f%% ± %4.1f%%  %s\n\n", "global_score", s.GlobalScore*100, s.GlobalMargin*100, Grade(s.GlobalScore))
}
