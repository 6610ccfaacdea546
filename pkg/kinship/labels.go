package kinship

import (
	"fmt"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// gendered holds the male and female form of a term.
type gendered struct{ male, female string }

func (g gendered) pick(gender family.Gender) string {
	if gender == family.Female {
		return g.female
	}
	return g.male
}

var labels = map[Kind]gendered{
	KindSelf:             {"Diri sendiri", "Diri sendiri"},
	KindChild:            {"Anak laki-laki", "Anak perempuan"},
	KindParent:           {"Ayah", "Ibu"},
	KindSibling:          {"Saudara laki-laki", "Saudara perempuan"},
	KindNieceNephew:      {"Keponakan laki-laki", "Keponakan perempuan"},
	KindUncleAunt:        {"Paman", "Bibi"},
	KindCousin:           {"Sepupu laki-laki", "Sepupu perempuan"},
	KindGrandchild:       {"Cucu laki-laki", "Cucu perempuan"},
	KindGrandparent:      {"Kakek", "Nenek"},
	KindGreatGrandchild:  {"Cicit laki-laki", "Cicit perempuan"},
	KindGreatGrandparent: {"Kakek buyut", "Nenek buyut"},
	KindDescendant:       {"Keturunan", "Keturunan"},
	KindAncestor:         {"Leluhur", "Leluhur"},
	KindUnknown:          {"Tidak diketahui", "Tidak diketahui"},
}

// Javanese honorifics for a parent's elder and younger siblings.
var (
	honorificElder   = gendered{"Pakdhe", "Budhe"}
	honorificYounger = gendered{"Paklik", "Bulik"}
)

// Label returns the Indonesian label of a kind for a person of the given
// gender. Generalized cousin kinds are spelled out from their degree and
// removal.
func Label(kind Kind, gender family.Gender) string {
	if g, ok := labels[kind]; ok {
		return g.pick(gender)
	}
	degree, removed, ok := kind.Cousin()
	if !ok {
		return labels[KindUnknown].pick(gender)
	}
	return cousinLabel(degree, removed, gender)
}

// DirectionalLabel refines Label for generalized cousins, whose wording
// depends on whether A sits above or below B.
func DirectionalLabel(kind Kind, gender family.Gender, distA, distB int) string {
	degree, removed, ok := kind.Cousin()
	if !ok || removed == 0 {
		return Label(kind, gender)
	}
	higher := distA < distB
	var base string
	switch {
	case degree == 0 && higher && removed == 2:
		base = gendered{"Kakek", "Nenek"}.pick(gender)
	case degree == 0 && higher:
		base = gendered{"Kakek buyut", "Nenek buyut"}.pick(gender)
	case degree == 0 && removed == 2:
		base = "Cucu keponakan"
	case degree == 0:
		base = "Cicit keponakan"
	case higher && removed == 1:
		base = gendered{"Paman sepupu", "Bibi sepupu"}.pick(gender)
	case higher:
		base = gendered{"Kakek sepupu", "Nenek sepupu"}.pick(gender)
	case removed == 1:
		base = "Keponakan sepupu"
	default:
		base = "Cucu sepupu"
	}
	if degree >= 2 {
		return fmt.Sprintf("%s (sepupu %s kali)", base, times(degree))
	}
	return base
}

func cousinLabel(degree, removed int, gender family.Gender) string {
	if degree <= 1 && removed == 0 {
		return labels[KindCousin].pick(gender)
	}
	label := fmt.Sprintf("Sepupu %s kali", times(degree))
	if degree <= 1 {
		label = "Sepupu"
	}
	if removed > 0 {
		label += fmt.Sprintf(", selisih %d generasi", removed)
	}
	return label
}

var numberWords = []string{"nol", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan", "sepuluh"}

func times(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return fmt.Sprint(n)
}

// javaneseHonorific picks Pakdhe/Budhe or Paklik/Bulik by comparing A with
// the parent of B who descends from the common ancestor. It returns "" when
// neither birth dates nor birth order settle who is older.
func (r *Resolver) javaneseHonorific(rel relation) string {
	parent, ok := r.ancestorAt(rel.b.ID, rel.lca, 1, rel.distA)
	if !ok {
		return ""
	}
	older, known := r.isOlder(rel.a.ID, parent)
	if !known {
		return ""
	}
	if older {
		return honorificElder.pick(rel.a.Gender)
	}
	return honorificYounger.pick(rel.a.Gender)
}

// isOlder reports whether a was born before b. Birth dates decide first;
// siblings sharing a parent fall back to their recorded birth order.
func (r *Resolver) isOlder(a, b family.ID) (older, known bool) {
	pa, aok := r.lookup.Person(a)
	pb, bok := r.lookup.Person(b)
	if !aok || !bok {
		return false, false
	}
	if pa.BirthDate != nil && pb.BirthDate != nil && !pa.BirthDate.Equal(pb.BirthDate.Time) {
		return family.Before(pa.BirthDate, pb.BirthDate), true
	}
	if !r.shareParent(a, b) {
		return false, false
	}
	oa, aok := r.birthOrder(a, pa)
	ob, bok := r.birthOrder(b, pb)
	if !aok || !bok || oa == ob {
		return false, false
	}
	return oa < ob, true
}

func (r *Resolver) birthOrder(id family.ID, p family.Person) (int, bool) {
	if l, ok := r.lookup.BirthLink(id); ok && l.BirthOrder != nil {
		return *l.BirthOrder, true
	}
	if p.BirthOrder != nil {
		return *p.BirthOrder, true
	}
	return 0, false
}

func (r *Resolver) shareParent(a, b family.ID) bool {
	pb := family.ResolveParents(r.lookup, b)
	for _, id := range family.ResolveParents(r.lookup, a).Known() {
		if id == pb.Father || id == pb.Mother {
			return true
		}
	}
	return false
}
