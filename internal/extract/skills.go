package extract

import (
	"regexp"
	"strings"
)

// KnownSkills is the vocabulary FindSkills looks for.
var KnownSkills = []string{
	"Python", "C++", "Java", "JavaScript", "React", "Node.js", "Express.js", "MongoDB",
	"SQL", "R", "Matlab", "Git", "Docker", "Kubernetes", "AWS", "HTML", "CSS",
	"Machine Learning", "Deep Learning", "NLP", "TensorFlow", "PyTorch", "Scikit-learn",
	"Pandas", "NumPy", "Matplotlib", "Seaborn", "Data Analysis", "Computer Vision",
}

var skillPatterns = compileSkills(KnownSkills)

func compileSkills(skills []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(skills))
	for i, s := range skills {
		// Boundaries are "not alphanumeric" rather than \b so that names
		// ending in punctuation, like C++, still match.
		out[i] = regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(strings.ToLower(s)) + `(?:$|[^a-z0-9])`)
	}
	return out
}

// FindSkills returns the known skills mentioned in text, in vocabulary order.
func FindSkills(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for i, re := range skillPatterns {
		if re.MatchString(lower) {
			found = append(found, KnownSkills[i])
		}
	}
	return found
}
