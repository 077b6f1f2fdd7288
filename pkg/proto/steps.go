package proto

// Step identifies one unit of the data-collection sequence.
type Step string

const (
	// StepNone means no active session.
	StepNone Step = "NONE"

	// StepFollowCheck gates the flow behind the social-media follow prompt.
	StepFollowCheck Step = "FOLLOW_CHECK"

	// Free-text collection steps, in flow order.
	StepName    Step = "NAME"
	StepEmail   Step = "EMAIL"
	StepPhone   Step = "PHONE"
	StepMajor   Step = "MAJOR"
	StepCountry Step = "COUNTRY"

	// StepUploadDocs accepts document attachments until a finish signal.
	StepUploadDocs Step = "UPLOAD_DOCS"

	// StepFinalize is the terminal step; reaching it seals the submission.
	StepFinalize Step = "FINALIZE"
)

func (s Step) String() string {
	return string(s)
}

// IsTerminal reports whether the step ends the flow.
func (s Step) IsTerminal() bool {
	return s == StepFinalize
}

// AllSteps returns the step catalog in flow order, excluding StepNone.
func AllSteps() []Step {
	return []Step{
		StepFollowCheck,
		StepName,
		StepEmail,
		StepPhone,
		StepMajor,
		StepCountry,
		StepUploadDocs,
		StepFinalize,
	}
}

// IsValidStep reports whether s is StepNone or a member of the step catalog.
func IsValidStep(s Step) bool {
	if s == StepNone {
		return true
	}
	for _, step := range AllSteps() {
		if s == step {
			return true
		}
	}
	return false
}

// Answer field names keyed into session state and submission records.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldMajor   = "major"
	FieldCountry = "country"
)
