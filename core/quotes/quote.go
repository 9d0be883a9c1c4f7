// Package quotes resolves motivational quotes from a remote provider with a
// local curated catalog as the backstop.
package quotes

// Quote is a single resolved quote. An empty Attribution means the author is unknown.
type Quote struct {
	Text        string
	Attribution string
}

// HasAttribution reports whether the quote carries an author.
func (q Quote) HasAttribution() bool {
	return q.Attribution != ""
}

// String renders the quote as "text — attribution", or just the text without an author.
func (q Quote) String() string {
	if !q.HasAttribution() {
		return q.Text
	}
	return q.Text + " — " + q.Attribution
}
