package domain

// GlossState is the approval state of a gloss.
type GlossState string

const (
	GlossStateUnapproved GlossState = "UNAPPROVED"
	GlossStateApproved   GlossState = "APPROVED"
)

func (s GlossState) String() string { return string(s) }

func (s GlossState) IsValid() bool {
	switch s {
	case GlossStateUnapproved, GlossStateApproved:
		return true
	}
	return false
}

// GlossSource records where the current gloss value came from.
type GlossSource string

const (
	GlossSourceUser   GlossSource = "USER"
	GlossSourceImport GlossSource = "IMPORT"
)

func (s GlossSource) String() string { return string(s) }

func (s GlossSource) IsValid() bool {
	switch s {
	case GlossSourceUser, GlossSourceImport:
		return true
	}
	return false
}

// ApprovalMethod tells analytics how a translator arrived at an approved gloss.
type ApprovalMethod string

const (
	ApprovalMethodUserInput         ApprovalMethod = "USER_INPUT"
	ApprovalMethodMachineSuggestion ApprovalMethod = "MACHINE_SUGGESTION"
	ApprovalMethodGoogleSuggestion  ApprovalMethod = "GOOGLE_SUGGESTION"
	ApprovalMethodLLMSuggestion     ApprovalMethod = "LLM_SUGGESTION"
)

func (m ApprovalMethod) String() string { return string(m) }

func (m ApprovalMethod) IsValid() bool {
	switch m {
	case ApprovalMethodUserInput, ApprovalMethodMachineSuggestion,
		ApprovalMethodGoogleSuggestion, ApprovalMethodLLMSuggestion:
		return true
	}
	return false
}

// TrackingEventType identifies the kind of analytics event.
type TrackingEventType string

const (
	TrackingEventApprovedGloss TrackingEventType = "approved_gloss"
)

func (t TrackingEventType) String() string { return string(t) }
