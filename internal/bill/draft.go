package bill

// Draft is a new bill between receipt selection and form submission
type Draft struct {
	FileURL    string      `json:"fileUrl"`
	FileName   string      `json:"fileName"`
	Key        string      `json:"key,omitempty"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// HasAttachment reports whether a receipt has been uploaded for the draft
func (d Draft) HasAttachment() bool {
	return d.FileURL != ""
}

// Suggestion holds form values read from the receipt image
type Suggestion struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Amount Amount `json:"amount"`
}
