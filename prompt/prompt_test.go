package prompt

import (
	"fmt"
	"strings"
	"testing"

	"chatpdf/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCount is a stand-in token counter: one token per whitespace-separated
// word, deterministic and cheap.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

func history(n int) []types.Message {
	msgs := make([]types.Message, n)
	for i := range msgs {
		msgs[i] = types.Message{
			Question: fmt.Sprintf("pregunta%d uno dos tres", i),
			Answer:   fmt.Sprintf("respuesta%d uno dos tres", i),
		}
	}
	return msgs
}

func TestBuild_GroundedContainsFallbackPhrase(t *testing.T) {
	p, _ := Build(DocumentGrounded, "español", "", nil, "¿qué dice el PDF?", 1000, wordCount)

	assert.Contains(t, p, FallbackAnswer)
	assert.Contains(t, p, "español")
	assert.True(t, strings.HasSuffix(p, "assistant:"))
}

func TestBuild_GroundedIncludesContext(t *testing.T) {
	p, _ := Build(DocumentGrounded, "inglés", "chunk one\nchunk two", nil, "q", 1000, wordCount)

	assert.Contains(t, p, "Contexto:\nchunk one\nchunk two")
	assert.Contains(t, p, "user: q")
}

func TestBuild_OpenChatHasNoContextBlock(t *testing.T) {
	p, _ := Build(OpenChat, "italiano", "", nil, "ciao", 1000, wordCount)

	assert.NotContains(t, p, "Contexto:")
	assert.NotContains(t, p, FallbackAnswer)
	assert.Contains(t, p, "italiano")
	assert.Contains(t, p, "user: ciao")
}

func TestBuild_HistoryRenderedChronologically(t *testing.T) {
	msgs := history(3)
	p, _ := Build(OpenChat, "español", "", msgs, "actual", 100000, wordCount)

	i0 := strings.Index(p, "pregunta0")
	i1 := strings.Index(p, "pregunta1")
	i2 := strings.Index(p, "pregunta2")
	iq := strings.Index(p, "actual")
	require.True(t, i0 >= 0 && i1 >= 0 && i2 >= 0 && iq >= 0)
	assert.True(t, i0 < i1 && i1 < i2 && i2 < iq)
}

func TestBuild_HistoryWindowCap(t *testing.T) {
	msgs := history(25)
	p, _ := Build(OpenChat, "español", "", msgs, "q", 1000000, wordCount)

	// only the 10 most recent enter the prompt even with room to spare
	assert.NotContains(t, p, "pregunta14")
	assert.Contains(t, p, "pregunta15")
	assert.Contains(t, p, "pregunta24")
}

func TestBuild_TrimsOldestFirst(t *testing.T) {
	msgs := history(12)
	question := "la pregunta actual"

	// prefix + question cost 18 tokens, each kept message costs 10;
	// a budget of 50 leaves room for exactly 3 history messages
	p, tokens := Build(OpenChat, "español", "", msgs, question, 50, wordCount)

	assert.LessOrEqual(t, tokens, 50)
	assert.NotContains(t, p, "pregunta8")
	assert.Contains(t, p, "pregunta9")
	assert.Contains(t, p, "pregunta10")
	assert.Contains(t, p, "pregunta11")
	assert.Contains(t, p, question)

	// kept window stays oldest-first
	assert.Less(t, strings.Index(p, "pregunta9"), strings.Index(p, "pregunta10"))
}

func TestBuild_QuestionNeverTrimmed(t *testing.T) {
	question := strings.Repeat("palabra ", 200)
	p, tokens := Build(OpenChat, "español", "", history(5), question, 10, wordCount)

	// the budget is impossible: history goes, the question stays and the
	// oversized prompt is returned rather than an error
	assert.Greater(t, tokens, 10)
	assert.Contains(t, p, "palabra palabra")
	assert.NotContains(t, p, "pregunta0")
	assert.NotContains(t, p, "pregunta4")
}

func TestBuild_DeterministicForSameInputs(t *testing.T) {
	msgs := history(12)
	first, firstTokens := Build(DocumentGrounded, "español", "algo de contexto", msgs, "q", 60, wordCount)
	for i := 0; i < 5; i++ {
		again, againTokens := Build(DocumentGrounded, "español", "algo de contexto", msgs, "q", 60, wordCount)
		assert.Equal(t, first, again)
		assert.Equal(t, firstTokens, againTokens)
	}
}

func TestBuild_ReturnsTokenCountOfFinalPrompt(t *testing.T) {
	p, tokens := Build(OpenChat, "español", "", nil, "una pregunta corta", 1000, wordCount)
	assert.Equal(t, wordCount(p), tokens)
}
