package kinship

var (
	sapaanParent      = gendered{"Bapak", "Ibu"}
	sapaanGrandparent = gendered{"Mbah Kakung", "Mbah Putri"}
	sapaanYounger     = gendered{"Le", "Nduk"}
	sapaanElder       = gendered{"Mas", "Mbak"}
	sapaanParentPeer  = gendered{"Om", "Tante"}
)

// sapaan returns how B should address A. honorific is the Javanese label
// already computed for uncle and aunt relationships.
func (r *Resolver) sapaan(rel relation, honorific string) string {
	g := rel.a.Gender
	switch rel.kind {
	case KindSelf, KindUnknown:
		return ""
	case KindParent:
		return sapaanParent.pick(g)
	case KindChild:
		return "Nak"
	case KindGrandparent:
		return sapaanGrandparent.pick(g)
	case KindGreatGrandparent, KindAncestor:
		return "Mbah Buyut"
	case KindGrandchild, KindGreatGrandchild, KindDescendant, KindNieceNephew:
		return sapaanYounger.pick(g)
	case KindSibling, KindCousin:
		return r.peerSapaan(rel)
	case KindUncleAunt:
		if honorific != "" {
			return honorific
		}
		return sapaanParentPeer.pick(g)
	}

	_, removed, ok := rel.kind.Cousin()
	if !ok {
		return ""
	}
	if removed == 0 {
		return r.peerSapaan(rel)
	}
	switch gap := rel.distB - rel.distA; {
	case gap == 1:
		// A is a peer of B's parent: compare A with that parent.
		if parent, ok := r.ancestorAt(rel.b.ID, rel.lca, 1, rel.distA); ok {
			if older, known := r.isOlder(rel.a.ID, parent); known {
				if older {
					return honorificElder.pick(g)
				}
				return honorificYounger.pick(g)
			}
		}
		return sapaanParentPeer.pick(g)
	case gap >= 2:
		return "Mbah"
	default:
		return sapaanYounger.pick(g)
	}
}

// peerSapaan addresses someone of the same generation by relative age.
func (r *Resolver) peerSapaan(rel relation) string {
	older, known := r.isOlder(rel.a.ID, rel.b.ID)
	switch {
	case !known:
		return ""
	case older:
		return sapaanElder.pick(rel.a.Gender)
	default:
		return "Dik"
	}
}
