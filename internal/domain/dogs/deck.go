package dogs

import "iter"

// Deck es una secuencia finita, perezosa y reiniciable de candidatos.
// El filtro se evalúa al iterar; cada llamada a All recorre desde el inicio.
type Deck struct {
	catalog []Dog
	keep    func(Dog) bool
}

func (d Deck) All() iter.Seq[Dog] {
	return func(yield func(Dog) bool) {
		for _, dog := range d.catalog {
			if d.keep != nil && !d.keep(dog) {
				continue
			}
			if !yield(dog) {
				return
			}
		}
	}
}

func (d Deck) Collect() []Dog {
	out := make([]Dog, 0)
	for dog := range d.All() {
		out = append(out, dog)
	}
	return out
}
