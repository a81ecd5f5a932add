package tax

import "strings"

// Tag names a keyword class.
type Tag string

const (
	TagSalary     Tag = "salary"
	TagTDS        Tag = "tds"
	TagInsurance  Tag = "insurance"
	TagMedical    Tag = "medical"
	TagInvestment Tag = "investment"
	TagHomeLoan   Tag = "home_loan"
)

// KeywordSet maps each tag to the substrings that identify it in a
// transaction detail. Matching is case-insensitive and tags are independent:
// one detail can carry several.
type KeywordSet map[Tag][]string

// DefaultKeywords returns the keyword classes for Indian bank narrations.
func DefaultKeywords() KeywordSet {
	return KeywordSet{
		TagSalary:     {"salary", "payroll", "wages"},
		TagTDS:        {"tds", "income tax", "it dept"},
		TagInsurance:  {"insurance", "mediclaim", "health policy"},
		TagMedical:    {"hospital", "clinic", "medical", "pharmacy"},
		TagInvestment: {"elss", "ppf", "mutual fund", "lic", "nps"},
		TagHomeLoan:   {"home loan", "housing loan", "emi"},
	}
}

// Matches reports whether text contains any keyword of tag.
func (k KeywordSet) Matches(text string, tag Tag) bool {
	text = strings.ToLower(text)
	for _, kw := range k[tag] {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Classify returns the set of tags whose keywords occur in text.
func (k KeywordSet) Classify(text string) map[Tag]bool {
	tags := make(map[Tag]bool)
	for tag := range k {
		if k.Matches(text, tag) {
			tags[tag] = true
		}
	}
	return tags
}
