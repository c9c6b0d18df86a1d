package vision

import "sort"

const MixedClass = "mixed"

// Verdict is the scene level outcome of a set of candidates. Confidence is
// nil for a mixed scene.
type Verdict struct {
	Class      string
	Confidence *float64
	Counts     map[string]int
	Categories []string
}

// Aggregate tallies accepted candidates per category. With one category the
// confidence is the share of all candidates that were accepted for it; with
// several the verdict is MixedClass without a confidence. ok is false when
// nothing was accepted and the caller has to classify the whole image.
func Aggregate(candidates []Candidate) (v Verdict, ok bool) {
	counts := make(map[string]int)
	for _, c := range candidates {
		if c.Accepted {
			counts[c.Box.Category]++
		}
	}
	if len(counts) == 0 {
		return Verdict{Counts: counts}, false
	}

	categories := make([]string, 0, len(counts))
	for k := range counts {
		categories = append(categories, k)
	}
	sort.Strings(categories)

	v = Verdict{Counts: counts, Categories: categories}
	if len(categories) > 1 {
		v.Class = MixedClass
		return v, true
	}

	conf := float64(counts[categories[0]]) / float64(len(candidates))
	v.Class = categories[0]
	v.Confidence = &conf
	return v, true
}

// Fallback is the verdict reported when no region survived verification. The
// confidence is the classifier's raw probability for the whole image and is
// not comparable with the population share reported by Aggregate.
func Fallback(class string, confidence float64) Verdict {
	return Verdict{
		Class:      class,
		Confidence: &confidence,
		Counts:     map[string]int{},
	}
}
