// Package corpus defines the document record accepted by the service and
// the JSON-lines corpus files used to seed an index.
package corpus

// Record is one document as it appears in a corpus file or in the body of
// an add request.
type Record struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Status  string `json:"status,omitempty"`
	Ratings []int  `json:"ratings,omitempty"`
}
