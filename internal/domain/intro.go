package domain

// IntroBrief is everything an intro writer may mention. Target is nil when
// the introduction is addressed to an audience described in free text.
type IntroBrief struct {
	Source            *Profile
	Target            *Profile
	TargetDescription string
	SharedSkills      []string
	SharedInterests   []string
}
