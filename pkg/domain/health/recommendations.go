package health

import "strings"

// Bucket is the time horizon of a recommendation.
type Bucket string

const (
	BucketImmediate Bucket = "immediate"
	BucketShortTerm Bucket = "short_term"
	BucketLongTerm  Bucket = "long_term"
)

// IsValid returns true for the three horizons.
func (b Bucket) IsValid() bool {
	switch b {
	case BucketImmediate, BucketShortTerm, BucketLongTerm:
		return true
	default:
		return false
	}
}

// KeywordRule routes a recommendation containing Keyword to Bucket.
type KeywordRule struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Bucket  Bucket `yaml:"bucket" json:"bucket"`
}

// DefaultKeywordRules are evaluated in order; the first match wins and
// unmatched text is long-term.
var DefaultKeywordRules = []KeywordRule{
	{Keyword: "immediately", Bucket: BucketImmediate},
	{Keyword: "urgent", Bucket: BucketImmediate},
	{Keyword: "review", Bucket: BucketShortTerm},
	{Keyword: "implement", Bucket: BucketShortTerm},
}

// BucketDefaults fill buckets that would otherwise be empty.
type BucketDefaults struct {
	Immediate string `yaml:"immediate" json:"immediate"`
	ShortTerm string `yaml:"short_term" json:"short_term"`
	LongTerm  string `yaml:"long_term" json:"long_term"`
}

// DefaultBucketDefaults are the reference fillers.
var DefaultBucketDefaults = BucketDefaults{
	Immediate: "Continue monitoring project health metrics",
	ShortTerm: "Review and optimize current processes",
	LongTerm:  "Establish continuous improvement practices",
}

// Recommendations groups deduplicated advice by horizon.
type Recommendations struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

// Categorizer buckets free-text recommendations and risk remediations.
type Categorizer struct {
	rules    []KeywordRule
	defaults BucketDefaults
}

// NewCategorizer creates a categorizer; an empty rule list falls back to DefaultKeywordRules.
func NewCategorizer(cfg Config) *Categorizer {
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = DefaultKeywordRules
	}
	defaults := cfg.Defaults
	if defaults.Immediate == "" {
		defaults.Immediate = DefaultBucketDefaults.Immediate
	}
	if defaults.ShortTerm == "" {
		defaults.ShortTerm = DefaultBucketDefaults.ShortTerm
	}
	if defaults.LongTerm == "" {
		defaults.LongTerm = DefaultBucketDefaults.LongTerm
	}
	return &Categorizer{rules: rules, defaults: defaults}
}

// Classify returns the bucket for a single recommendation. Matching is case-insensitive.
func (c *Categorizer) Classify(text string) Bucket {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if strings.Contains(lower, strings.ToLower(r.Keyword)) {
			return r.Bucket
		}
	}
	return BucketLongTerm
}

// CategorizeRecommendations routes critical risk remediations to immediate,
// high ones to short-term, and the free text by keyword. Buckets keep
// insertion order, drop exact duplicates, and are never empty.
func (c *Categorizer) CategorizeRecommendations(recommendations []string, risks []RiskAssessment) Recommendations {
	buckets := map[Bucket]*orderedSet{
		BucketImmediate: newOrderedSet(),
		BucketShortTerm: newOrderedSet(),
		BucketLongTerm:  newOrderedSet(),
	}

	for _, r := range risks {
		switch r.Level {
		case SeverityCritical:
			buckets[BucketImmediate].add(r.Recommendation)
		case SeverityHigh:
			buckets[BucketShortTerm].add(r.Recommendation)
		}
	}
	for _, text := range recommendations {
		buckets[c.Classify(text)].add(text)
	}

	buckets[BucketImmediate].fillIfEmpty(c.defaults.Immediate)
	buckets[BucketShortTerm].fillIfEmpty(c.defaults.ShortTerm)
	buckets[BucketLongTerm].fillIfEmpty(c.defaults.LongTerm)

	return Recommendations{
		Immediate: buckets[BucketImmediate].items,
		ShortTerm: buckets[BucketShortTerm].items,
		LongTerm:  buckets[BucketLongTerm].items,
	}
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if item == "" {
		return
	}
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) fillIfEmpty(item string) {
	if len(s.items) == 0 {
		s.add(item)
	}
}
