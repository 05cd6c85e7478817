package bot

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Extraction is the outcome of trigger detection on one message.
// Triggered with an empty Question means the message contained only trigger
// phrases; the pipeline answers with a prompt instead of running retrieval.
type Extraction struct {
	Triggered bool
	Question  string
}

// QuestionExtractor detects trigger phrases and strips them from the message to
// recover the residual question.
type QuestionExtractor struct {
	pattern *regexp.Regexp
}

// NewQuestionExtractor compiles the phrase set into a single case-insensitive
// alternation. Longer phrases are matched first so overlapping variants cannot
// leave partial-match artifacts the way repeated per-phrase replacement can.
func NewQuestionExtractor(phrases []string) (*QuestionExtractor, error) {
	cleaned := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			cleaned = append(cleaned, phrase)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("trigger phrase set cannot be empty")
	}

	sort.Slice(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	quoted := make([]string, len(cleaned))
	for i, phrase := range cleaned {
		quoted[i] = regexp.QuoteMeta(phrase)
	}

	pattern, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile trigger pattern")
	}

	return &QuestionExtractor{pattern: pattern}, nil
}

// Extract reports whether content contains a trigger phrase and, if so, the
// residual question with every occurrence of every phrase removed.
func (e *QuestionExtractor) Extract(content string) Extraction {
	if !e.pattern.MatchString(content) {
		return Extraction{}
	}

	residual := e.pattern.ReplaceAllString(content, " ")
	residual = strings.Join(strings.Fields(residual), " ")

	return Extraction{
		Triggered: true,
		Question:  residual,
	}
}
