package domain

// ReplyDraft is a candidate outbound reply plus the fields the user is still
// being asked for. Transient; only a truncated copy reaches the audit log.
type ReplyDraft struct {
	Text             string
	RequiresUserInfo []string
}

// Evidence is one knowledge-base snippet.
type Evidence struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	SourceID string `json:"source_id"`
}

// EvidencePack is an ordered, possibly empty, advisory set of evidence for a
// category.
type EvidencePack struct {
	Items []Evidence `json:"items"`
}

// Top returns the first snippet or the empty string.
func (p EvidencePack) Top() string {
	if len(p.Items) == 0 {
		return ""
	}
	return p.Items[0].Snippet
}
