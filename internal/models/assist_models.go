package models

// ComplaintAnalysis is the category/priority suggestion shown on the report form.
type ComplaintAnalysis struct {
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Explanation string   `json:"explanation"`
	Generated   bool     `json:"generated"`
}

// ComplaintValidation tells the form whether the text looks like a genuine civic issue.
type ComplaintValidation struct {
	IsValid   bool   `json:"isValid"`
	Reason    string `json:"reason,omitempty"`
	Generated bool   `json:"generated"`
}

type EnhancedText struct {
	EnhancedTitle       string `json:"enhancedTitle"`
	EnhancedDescription string `json:"enhancedDescription"`
}

// GeocodeResult is Approximate when the default coordinate was substituted.
type GeocodeResult struct {
	Location    Location `json:"location"`
	Approximate bool     `json:"approximate"`
}

// EmailDraft is a notification letter for a department officer.
type EmailDraft struct {
	Recipient string `json:"recipientEmail"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
}

// Officer is a department contact loaded from the officers CSV.
type Officer struct {
	Department string `json:"department"`
	Name       string `json:"officerName"`
	Email      string `json:"email"`
}
