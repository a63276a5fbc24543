package core

// Response is the answer handed back to the dialogue layer. An empty Text
// means no text; Payload is reserved for structured answers and is nil on
// every path the resolver currently renders.
type Response struct {
	Text    string `json:"text,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// TextResponse returns a Response carrying only text.
func TextResponse(text string) Response { return Response{Text: text} }

// HasText reports whether the response carries text.
func (r Response) HasText() bool { return r.Text != "" }
