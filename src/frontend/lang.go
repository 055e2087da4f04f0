package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved VIR keywords.
// The first dimension equals the length of the word.
// The second dimension is the slice of all words of that length.
// Opcodes of binary operations and casts, types and labels are plain words.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "br", typ: itemBr},
		{val: "to", typ: itemTo},
	},
	// Three-grams
	{
		{val: "phi", typ: itemPhi},
		{val: "ret", typ: itemRet},
	},
	// Four-grams
	{
		{val: "func", typ: itemFunc},
		{val: "call", typ: itemCall},
	},
	// Five-grams
	{
		{val: "splat", typ: itemSplat},
		{val: "undef", typ: itemUndef},
	},
	// Six-grams
	{
		{val: "insert", typ: itemInsert},
	},
	// Seven-grams
	{
		{val: "extract", typ: itemExtract},
		{val: "shuffle", typ: itemShuffle},
		{val: "varying", typ: itemVarying},
	},
	// Eight- to fourteen-grams
	{}, {}, {}, {}, {}, {}, {},
	// Fifteen-grams
	{
		{val: "zeroinitializer", typ: itemZero},
	},
}

// isKeyword returns true if the string s is a reserved VIR keyword.
// On the return of true the itemType of the keyword is returned.
// On the return of false the itemType is either itemWord or itemError.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 {
		return false, itemError
	}
	if len(s) > len(rw) {
		return false, itemWord
	}

	// Check if string s is a reserved word by iterating over all words in rw of length len(s).
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.typ
		}
	}
	return false, itemWord
}
