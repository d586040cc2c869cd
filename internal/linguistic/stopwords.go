package linguistic

var portugueseStopWords = []string{
	"a", "à", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles",
	"aquilo", "as", "às", "até", "com", "como", "da", "das", "de",
	"dela", "delas", "dele", "deles", "depois", "do", "dos", "e", "é",
	"ela", "elas", "ele", "eles", "em", "entre", "era", "essa", "essas",
	"esse", "esses", "esta", "está", "estão", "estas", "este", "estes",
	"eu", "foi", "foram", "há", "isso", "isto", "já", "lhe", "lhes",
	"mais", "mas", "me", "mesmo", "meu", "minha", "muito", "na", "nas",
	"não", "nem", "no", "nos", "nós", "num", "numa", "o", "os", "ou",
	"para", "pela", "pelas", "pelo", "pelos", "por", "qual", "quando",
	"que", "quem", "são", "se", "sem", "ser", "seu", "seus", "só",
	"sua", "suas", "também", "te", "tem", "têm", "ter", "um", "uma",
	"umas", "uns", "você", "vocês", "sobre", "ainda", "cada", "onde",
}

var englishStopWords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
	"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
	"were", "be", "been", "being", "it", "its", "this", "that", "these",
	"those", "from", "up", "down", "over", "under", "again", "further",
	"than", "so", "such", "into", "about", "between", "through",
	"during", "before", "after", "above", "below", "out", "off", "own",
	"same", "too", "very", "can", "will", "just", "should", "now", "has",
	"have", "had", "not", "no", "they", "them", "their", "we", "our",
	"you", "your", "he", "she", "his", "her", "which", "who", "what",
}

// StopWords returns the stop-word set for language. Unknown languages get
// the English list.
func StopWords(language string) map[string]struct{} {
	words := englishStopWords
	if language == Portuguese || language == "" {
		words = portugueseStopWords
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
