package tomlparser

type TokenType int

const (
	WhitespaceToken TokenType = iota + 1
	NewlineToken
	CommentToken

	EqualsToken
	PeriodToken
	CommaToken
	ColonToken
	PlusToken
	LeftBraceToken
	RightBraceToken
	LeftBracketToken
	RightBracketToken

	// KeylikeToken covers bare keys, numbers, booleans and date/time
	// fragments; which of those it actually is depends on where it sits,
	// so the parser does the classification.
	KeylikeToken
	StringToken

	EOFToken
)

func (tt TokenType) GoString() string {
	return tokenToDescription[tt]
}

func (tt TokenType) String() string {
	return tokenToDescription[tt]
}

func init() {
	// make sure we panic if a description isn't declared
	for tt := TokenType(1); tt != EOFToken; tt++ {
		if tokenToDescription[tt] == "" || tokenToHuman[tt] == "" {
			panic("you have not updated the token descriptions")
		}
	}
}

var tokenToDescription = map[TokenType]string{
	WhitespaceToken: "WhitespaceToken",
	NewlineToken:    "NewlineToken",
	CommentToken:    "CommentToken",

	EqualsToken:       "EqualsToken",
	PeriodToken:       "PeriodToken",
	CommaToken:        "CommaToken",
	ColonToken:        "ColonToken",
	PlusToken:         "PlusToken",
	LeftBraceToken:    "LeftBraceToken",
	RightBraceToken:   "RightBraceToken",
	LeftBracketToken:  "LeftBracketToken",
	RightBracketToken: "RightBracketToken",

	KeylikeToken: "KeylikeToken",
	StringToken:  "StringToken",

	EOFToken: "EOFToken",
}

// describe spells the token the way Wanted error messages quote it.
func (tt TokenType) describe() string {
	return tokenToHuman[tt]
}

var tokenToHuman = map[TokenType]string{
	WhitespaceToken: "whitespace",
	NewlineToken:    "a newline",
	CommentToken:    "a comment",

	EqualsToken:       "an equals",
	PeriodToken:       "a period",
	CommaToken:        "a comma",
	ColonToken:        "a colon",
	PlusToken:         "a plus",
	LeftBraceToken:    "a left brace",
	RightBraceToken:   "a right brace",
	LeftBracketToken:  "a left bracket",
	RightBracketToken: "a right bracket",

	KeylikeToken: "an identifier",
	StringToken:  "a string",

	EOFToken: "eof",
}
