package bpe

// Symbol is a handle to an interned subword string owned by a Vocabulary.
type Symbol uint32

// symbolTable interns subword contents. Each distinct content is stored once,
// so two symbols are equal exactly when their contents are.
type symbolTable struct {
	ids  map[string]Symbol
	strs []string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{ids: make(map[string]Symbol, 256)}
}

func (t *symbolTable) intern(s string) Symbol {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := Symbol(len(t.strs))
	t.strs = append(t.strs, s)
	t.ids[s] = id
	return id
}

func (t *symbolTable) has(id Symbol) bool { return int(id) < len(t.strs) }

// String returns the content of id, or "" when id is unknown.
func (t *symbolTable) String(id Symbol) string {
	if !t.has(id) {
		return ""
	}
	return t.strs[id]
}

// AppendInto appends the content of id to dst and reports whether id exists.
func (t *symbolTable) AppendInto(dst *[]byte, id Symbol) bool {
	if !t.has(id) {
		return false
	}
	*dst = append(*dst, t.strs[id]...)
	return true
}

func (t *symbolTable) Len() int { return len(t.strs) }

// appendJoined appends the contents of seq separated by sep.
func (t *symbolTable) appendJoined(dst []byte, seq []Symbol, sep byte) []byte {
	for i, s := range seq {
		if i > 0 {
			dst = append(dst, sep)
		}
		t.AppendInto(&dst, s)
	}
	return dst
}
