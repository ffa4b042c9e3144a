package matching

import (
	"time"

	"facility-matcher/core/match"
	"facility-matcher/core/session"
	"facility-matcher/core/table"
)

// PreviewRows is the number of rows shown per list.
const PreviewRows = 5

// TableView describes an uploaded list.
type TableView struct {
	Name    string         `json:"name"`
	Columns []string       `json:"columns"`
	Rows    int            `json:"rows"`
	Preview []table.Record `json:"preview"`
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID        string          `json:"id"`
	State     session.State   `json:"state"`
	Primary   *TableView      `json:"primary,omitempty"`
	Reference *TableView      `json:"reference,omitempty"`
	Params    *session.Params `json:"params,omitempty"`
	Summary   *match.Summary  `json:"summary,omitempty"`
	Created   time.Time       `json:"created"`
	Updated   time.Time       `json:"updated"`
}

func newTableView(t *table.Table) *TableView {
	if t == nil {
		return nil
	}
	return &TableView{
		Name:    t.Name,
		Columns: t.Columns,
		Rows:    t.Len(),
		Preview: t.Preview(PreviewRows),
	}
}

// NewSessionView renders a session snapshot.
func NewSessionView(s session.Session) SessionView {
	v := SessionView{
		ID:        s.ID,
		State:     s.State,
		Primary:   newTableView(s.Primary),
		Reference: newTableView(s.Reference),
		Params:    s.Params,
		Created:   s.Created,
		Updated:   s.Updated,
	}
	if s.Result != nil {
		summary := s.Result.Summary
		v.Summary = &summary
	}
	return v
}
