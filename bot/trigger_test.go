package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *QuestionExtractor {
	t.Helper()
	extractor, err := NewQuestionExtractor([]string{"rtfm", "read the f***ing manual"})
	require.NoError(t, err)
	return extractor
}

func TestExtract_TriggeredWithQuestion(t *testing.T) {
	extractor := newTestExtractor(t)

	got := extractor.Extract("RTFM what is the deploy command")
	assert.True(t, got.Triggered)
	assert.Equal(t, "what is the deploy command", got.Question)
}

func TestExtract_TriggeredEmptyQuestion(t *testing.T) {
	extractor := newTestExtractor(t)

	got := extractor.Extract("rtfm")
	assert.True(t, got.Triggered)
	assert.Equal(t, "", got.Question)
}

func TestExtract_NotTriggered(t *testing.T) {
	extractor := newTestExtractor(t)

	got := extractor.Extract("anyone know what the deploy command is?")
	assert.False(t, got.Triggered)
	assert.Equal(t, "", got.Question)
}

func TestExtract_CaseInsensitive(t *testing.T) {
	extractor := newTestExtractor(t)

	for _, content := range []string{"rtfm when is the meeting", "RTFM when is the meeting", "Rtfm when is the meeting"} {
		got := extractor.Extract(content)
		assert.True(t, got.Triggered, "content=%q", content)
		assert.Equal(t, "when is the meeting", got.Question, "content=%q", content)
	}
}

func TestExtract_RemovesEveryOccurrence(t *testing.T) {
	extractor := newTestExtractor(t)

	got := extractor.Extract("rtfm what does RTFM mean here rtfm")
	assert.True(t, got.Triggered)
	assert.Equal(t, "what does mean here", got.Question)
}

func TestExtract_LongPhraseVariant(t *testing.T) {
	extractor := newTestExtractor(t)

	got := extractor.Extract("Read The F***ing Manual where are the runbooks")
	assert.True(t, got.Triggered)
	assert.Equal(t, "where are the runbooks", got.Question)
}

func TestExtract_MidWordMatchStillStripped(t *testing.T) {
	extractor := newTestExtractor(t)

	// Substring matching is deliberate: the source behavior triggers on any
	// occurrence, not only word boundaries.
	got := extractor.Extract("see rtfm: the wiki")
	assert.True(t, got.Triggered)
	assert.Equal(t, "see : the wiki", got.Question)
}

func TestExtract_OverlappingPhrases(t *testing.T) {
	// A phrase that is a prefix of another must not leave partial-match
	// artifacts regardless of configuration order.
	extractor, err := NewQuestionExtractor([]string{"help", "help me out"})
	require.NoError(t, err)

	got := extractor.Extract("help me out which channel is on-call")
	assert.True(t, got.Triggered)
	assert.Equal(t, "which channel is on-call", got.Question)
}

func TestNewQuestionExtractor_EmptyPhraseSet(t *testing.T) {
	_, err := NewQuestionExtractor(nil)
	assert.Error(t, err)

	_, err = NewQuestionExtractor([]string{"  ", ""})
	assert.Error(t, err)
}
