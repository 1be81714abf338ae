package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion and round trip held.
	Pass bool `json:"pass"`

	// Ingredients and Products are the reduced net flow in entry text form.
	Ingredients []string `json:"ingredients"`
	Products    []string `json:"products"`

	// Payload is the saved version 5 text of the scenario's state.
	Payload string `json:"payload,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Ingredients: []string{},
		Products:    []string{},
		Errors:      []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
