package treelayout

// Default geometry, in pixels.
const (
	DefaultNodeWidth        = 180.0
	DefaultNodeHeight       = 80.0
	DefaultVerticalGap      = 100.0
	DefaultSiblingBuffer    = 40.0
	DefaultSpouseGap        = 30.0
	DefaultSpouseBuffer     = 40.0
	DefaultOverlapAllowance = 10.0
	DefaultMarriageNodeSize = 10.0
)

// Options controls the layout geometry.
type Options struct {
	NodeWidth   float64
	NodeHeight  float64
	VerticalGap float64

	// SiblingBuffer is the minimum horizontal space between sibling subtrees.
	SiblingBuffer float64
	// OverlapAllowance lets sibling subtrees draw closer than SiblingBuffer.
	// It is capped at SiblingBuffer so subtrees never intersect.
	OverlapAllowance float64

	// SpouseGap is the minimum half-distance between a person and a spouse;
	// the marriage node sits in the middle of the 2*SpouseGap opening.
	SpouseGap float64
	// SpouseBuffer separates neighbouring child clusters of one person.
	SpouseBuffer float64

	MarriageNodeSize float64

	// IncludeDivorced keeps divorced couples (inactive, both alive) as
	// spouses with a marriage node.
	IncludeDivorced bool
}

// DefaultOptions returns the default geometry.
func DefaultOptions() Options {
	return Options{
		NodeWidth:        DefaultNodeWidth,
		NodeHeight:       DefaultNodeHeight,
		VerticalGap:      DefaultVerticalGap,
		SiblingBuffer:    DefaultSiblingBuffer,
		OverlapAllowance: DefaultOverlapAllowance,
		SpouseGap:        DefaultSpouseGap,
		SpouseBuffer:     DefaultSpouseBuffer,
		MarriageNodeSize: DefaultMarriageNodeSize,
	}
}

// normalized fills zero or negative sizes with defaults and caps the overlap
// allowance.
func (o Options) normalized() Options {
	def := DefaultOptions()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&o.NodeWidth, def.NodeWidth)
	fill(&o.NodeHeight, def.NodeHeight)
	fill(&o.VerticalGap, def.VerticalGap)
	fill(&o.SiblingBuffer, def.SiblingBuffer)
	fill(&o.SpouseGap, def.SpouseGap)
	fill(&o.SpouseBuffer, def.SpouseBuffer)
	fill(&o.MarriageNodeSize, def.MarriageNodeSize)
	o.OverlapAllowance = max(0, min(o.OverlapAllowance, o.SiblingBuffer))
	return o
}
