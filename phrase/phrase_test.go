package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/phascan/sentence"
)

// tok builds a token; head == index marks the root.
func tok(index, head int, text, pos, dep string) sentence.Token {
	return sentence.Token{Id: index, Index: index, Head: head, Text: text, Lemma: text, Pos: pos, Dep: dep}
}

func tree(t *testing.T, tokens ...sentence.Token) sentence.Graph {
	t.Helper()
	tr, err := sentence.NewTree(tokens)
	require.NoError(t, err)
	return tr
}

func texts(graphs ...sentence.Graph) []string {
	return Texts(Extract(graphs...))
}

// This app can intercept text message
func interceptTree(t *testing.T) sentence.Graph {
	return tree(t,
		tok(0, 1, "This", "DET", "det"),
		tok(1, 3, "app", "NOUN", "nsubj"),
		tok(2, 3, "can", "AUX", "aux"),
		tok(3, 3, "intercept", "VERB", "ROOT"),
		tok(4, 5, "text", "NOUN", "compound"),
		tok(5, 3, "message", "NOUN", "dobj"),
	)
}

// We will never use it to collect personal information
func neverTree(t *testing.T, neg bool) sentence.Graph {
	never := tok(2, 3, "never", "ADV", "neg")
	if !neg {
		never = tok(2, 3, "always", "ADV", "advmod")
	}

	return tree(t,
		tok(0, 3, "We", "PRON", "nsubj"),
		tok(1, 3, "will", "AUX", "aux"),
		never,
		tok(3, 3, "use", "VERB", "ROOT"),
		tok(4, 3, "it", "PRON", "dobj"),
		tok(5, 6, "to", "PART", "aux"),
		tok(6, 3, "collect", "VERB", "xcomp"),
		tok(7, 8, "personal", "ADJ", "amod"),
		tok(8, 6, "information", "NOUN", "dobj"),
	)
}

func TestDirectObjectPrefersCompound(t *testing.T) {
	phrases := Extract(interceptTree(t))
	require.Len(t, phrases, 1)

	p := phrases[0]
	assert.Equal(t, "intercept text message", p.Text)
	assert.Equal(t, 3, p.Verb)
	assert.Equal(t, "intercept", p.VerbText)
	assert.Equal(t, RuleDirectObject, p.Rule)
}

func TestDirectObjectFirstCompoundWins(t *testing.T) {
	g := tree(t,
		tok(0, 0, "reads", "VERB", "ROOT"),
		tok(1, 3, "sms", "NOUN", "compound"),
		tok(2, 3, "text", "NOUN", "compound"),
		tok(3, 0, "message", "NOUN", "dobj"),
	)

	assert.Equal(t, []string{"reads sms message"}, texts(g))
}

func TestNegatedVerbAndComplementExcluded(t *testing.T) {
	g := neverTree(t, true)

	excluded := Exclusions(g)
	assert.Equal(t, map[int]bool{3: true, 6: true}, excluded)
	assert.Empty(t, texts(g))
}

func TestNotNegatedVerbsProducePhrases(t *testing.T) {
	g := neverTree(t, false)

	assert.Empty(t, Exclusions(g))
	// "always" is an adverbial modifier met before the object
	assert.Equal(t, []string{"use always", "collect information"}, texts(g))
}

func TestPrepositionEmitsOnePhrasePerObject(t *testing.T) {
	// sends to friends family
	g := tree(t,
		tok(0, 0, "sends", "VERB", "ROOT"),
		tok(1, 0, "to", "ADP", "prep"),
		tok(2, 1, "friends", "NOUN", "pobj"),
		tok(3, 1, "family", "NOUN", "pobj"),
	)

	phrases := Extract(g)
	require.Len(t, phrases, 2)
	assert.Equal(t, "sends to friends", phrases[0].Text)
	assert.Equal(t, "sends to family", phrases[1].Text)
	for _, p := range phrases {
		assert.Equal(t, RulePreposition, p.Rule)
		assert.Equal(t, 0, p.Verb)
	}
}

func TestPrepositionWithoutObjectCompletesVerb(t *testing.T) {
	// goes up quickly
	g := tree(t,
		tok(0, 0, "goes", "VERB", "ROOT"),
		tok(1, 0, "up", "ADP", "prep"),
		tok(2, 0, "quickly", "ADV", "advmod"),
	)

	assert.Empty(t, texts(g))
}

func TestAdverbialClauseWithPassiveSubject(t *testing.T) {
	// It runs when the screen is locked
	g := tree(t,
		tok(0, 1, "It", "PRON", "nsubj"),
		tok(1, 1, "runs", "VERB", "ROOT"),
		tok(2, 6, "when", "ADV", "advmod"),
		tok(3, 4, "the", "DET", "det"),
		tok(4, 6, "screen", "NOUN", "nsubjpass"),
		tok(5, 6, "is", "AUX", "auxpass"),
		tok(6, 1, "locked", "VERB", "advcl"),
	)

	phrases := Extract(g)
	require.Len(t, phrases, 2)
	assert.Equal(t, "runs screen locked", phrases[0].Text)
	assert.Equal(t, RuleAdverbialClause, phrases[0].Rule)
	// the clause verb roots its own traversal, where it is not a clause
	assert.Equal(t, "locked when", phrases[1].Text)
	assert.Equal(t, RuleAdverbialModifier, phrases[1].Rule)
}

func TestAdverbialClauseWithoutPassiveSubject(t *testing.T) {
	// starts after booting
	g := tree(t,
		tok(0, 0, "starts", "VERB", "ROOT"),
		tok(1, 2, "after", "ADP", "mark"),
		tok(2, 0, "booting", "VERB", "advcl"),
	)

	assert.Equal(t, []string{"starts booting"}, texts(g))
}

func TestFirstRuleInTraversalOrderWins(t *testing.T) {
	// It quickly reads messages
	g := tree(t,
		tok(0, 2, "It", "PRON", "nsubj"),
		tok(1, 2, "quickly", "ADV", "advmod"),
		tok(2, 2, "reads", "VERB", "ROOT"),
		tok(3, 2, "messages", "NOUN", "dobj"),
	)

	assert.Equal(t, []string{"reads quickly"}, texts(g))
}

func TestBreadthFirstBeforeDepth(t *testing.T) {
	// shows [notes [of x]] quickly: the modifier at depth one wins over the
	// preposition at depth two
	g := tree(t,
		tok(0, 0, "shows", "VERB", "ROOT"),
		tok(1, 0, "notes", "NOUN", "attr"),
		tok(2, 1, "of", "ADP", "prep"),
		tok(3, 2, "users", "NOUN", "pobj"),
		tok(4, 0, "quickly", "ADV", "advmod"),
	)

	assert.Equal(t, []string{"shows quickly"}, texts(g))
}

func TestClauseBoundaryBlocksDescent(t *testing.T) {
	// helps people who forget passwords
	g := tree(t,
		tok(0, 0, "helps", "VERB", "ROOT"),
		tok(1, 0, "people", "NOUN", "npadvmod"),
		tok(2, 3, "who", "PRON", "nsubj"),
		tok(3, 1, "forget", "VERB", "relcl"),
		tok(4, 3, "passwords", "NOUN", "dobj"),
	)

	assert.Equal(t, []string{"forget passwords"}, texts(g))
}

func TestConjunctVerbContinuesClause(t *testing.T) {
	// reads and deletes messages
	g := tree(t,
		tok(0, 0, "reads", "VERB", "ROOT"),
		tok(1, 0, "and", "CCONJ", "cc"),
		tok(2, 0, "deletes", "VERB", "conj"),
		tok(3, 2, "messages", "NOUN", "dobj"),
	)

	assert.Equal(t, []string{"reads messages", "deletes messages"}, texts(g))
}

func TestClausalSubjectIsNotExplored(t *testing.T) {
	g := tree(t,
		tok(0, 0, "shows", "VERB", "ROOT"),
		tok(1, 0, "what", "PRON", "csubj"),
		tok(2, 1, "data", "NOUN", "dobj"),
	)

	assert.Empty(t, texts(g))
}

func TestClausalSubjectVerbRootsItsOwnPhrase(t *testing.T) {
	// Reading your messages helps us
	g := tree(t,
		tok(0, 3, "Reading", "VERB", "csubj"),
		tok(1, 2, "your", "PRON", "poss"),
		tok(2, 0, "messages", "NOUN", "dobj"),
		tok(3, 3, "helps", "VERB", "ROOT"),
		tok(4, 3, "us", "PRON", "dobj"),
	)

	// "helps" does not continue into the subject clause
	assert.Equal(t, []string{"Reading messages", "helps us"}, texts(g))
}

func TestTraversalTerminatesOnCycle(t *testing.T) {
	// no root: the two tokens point at each other
	g := tree(t,
		tok(0, 1, "go", "VERB", "conj"),
		tok(1, 0, "home", "NOUN", "npadvmod"),
	)

	assert.Empty(t, texts(g))
}

func TestExtractKeepsSentenceAndVerbOrder(t *testing.T) {
	first := neverTree(t, false)
	second := interceptTree(t)

	assert.Equal(t,
		[]string{"intercept text message", "use always", "collect information"},
		texts(second, first))

	phrases := Extract(second, first)
	require.Len(t, phrases, 3)
	assert.Equal(t, []int{0, 1, 1}, []int{phrases[0].Sentence, phrases[1].Sentence, phrases[2].Sentence})
}

func TestExtractIsRepeatable(t *testing.T) {
	g := neverTree(t, false)

	assert.Equal(t, Extract(g), Extract(g))
	assert.Equal(t, Exclusions(g), Exclusions(g))
}

func TestExtractEmpty(t *testing.T) {
	phrases := Extract()
	assert.NotNil(t, phrases)
	assert.Empty(t, phrases)
}
