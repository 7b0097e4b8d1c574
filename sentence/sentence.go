package sentence

// Doc is a parsed description: the sentences produced by the dependency
// parser for one text.
type Doc struct {
	Id int `json:"id,omitempty"`

	// Title is the text the doc was parsed from, or a file name for docs
	// read from disk.
	Title string `json:"title,omitempty"`

	Sentences []Sentence `json:"sentences"`
}

// Sentence is an ordered list of tokens plus its position inside the Doc.
type Sentence struct {
	Id     int     `json:"id"`
	DocId  int     `json:"doc_id,omitempty"`
	Tokens []Token `json:"tokens"`
}

// Token represents a word of the sentence, with POS and dependency metadata.
type Token struct {
	Id         int    `json:"id"`
	Head       int    `json:"head"`
	SentenceId int    `json:"sent"`
	Pos        string `json:"pos"`
	Dep        string `json:"dep"`

	// A string containing detailed POS data
	Tag string `json:"tag"`

	// the index of the start character of the token in the original text (set by spacy, stanza)
	Idx int `json:"idx"`

	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	// The index of the word in the sentence, starting at 0. Head refers to
	// this index.
	Index int `json:"index"`
}

// IsRoot reports whether the token is the syntactic root of its sentence.
// Parsers mark the root either by pointing the head at the token itself or
// with a negative head.
func (t Token) IsRoot() bool {
	return t.Head == t.Index || t.Head < 0
}
