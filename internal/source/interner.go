package source

import (
	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner хранит уникальные строки и выдаёт им плотные ID.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern вставляет строку в интернер и возвращает её ID.
// Если строка уже есть, возвращает её ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// Создаём собственную копию строки, чтобы не зависеть от исходного буфера.
	cpy := string([]byte(s))
	id := StringID(len(i.byID)) //nolint:gosec // interner sizes fit uint32
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternIdentifier interns a pictographic identifier after NFC
// normalisation. Emoji sequences that render identically but differ in
// combining order must resolve to the same name.
func (i *Interner) InternIdentifier(s string) StringID {
	return i.Intern(norm.NFC.String(s))
}

// Lookup возвращает строку по ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup for IDs known to be valid; unknown IDs yield "".
func (i *Interner) MustLookup(id StringID) string {
	s, _ := i.Lookup(id)
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

func (i *Interner) Len() int {
	return len(i.byID)
}
