package model

// AttachmentColor is a Slack attachment color keyword. Purely advisory UI
// metadata.
type AttachmentColor string

const (
	ColorGood    AttachmentColor = "good"
	ColorWarning AttachmentColor = "warning"
	ColorDanger  AttachmentColor = "danger"
	ColorNone    AttachmentColor = ""
)

// ColorForMergeableState maps a pull request's mergeability to an
// attachment color. Unknown states get no color.
func ColorForMergeableState(state MergeableState) AttachmentColor {
	switch state {
	case MergeableClean:
		return ColorGood
	case MergeableUnknown:
		return ColorWarning
	case MergeableUnstable, MergeableDirty:
		return ColorDanger
	default:
		return ColorNone
	}
}
