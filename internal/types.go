package internal

import "fmt"

// SearchPagination carries page/limit through search and synchronize calls.
// Page is 1-based; Limit falls back to the configured default when absent.
type SearchPagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p SearchPagination) Normalize(defaultLimit int) (int, int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// ProcessSummary reports per-item outcomes of a batch operation. A batch
// never fails as a whole; each row lands in OKDetails or KODetails.
type ProcessSummary struct {
	Total     int      `json:"total"`
	OKCount   int      `json:"okCount"`
	KOCount   int      `json:"koCount"`
	OKDetails []string `json:"okDetails"`
	KODetails []string `json:"koDetails"`
}

func NewProcessSummary(total int) *ProcessSummary {
	return &ProcessSummary{
		Total:     total,
		OKDetails: []string{},
		KODetails: []string{},
	}
}

func (s *ProcessSummary) AddOK(index int, label string) {
	s.OKCount++
	s.OKDetails = append(s.OKDetails, fmt.Sprintf("(%d) name=%s, message=OK", index, label))
}

func (s *ProcessSummary) AddKO(index int, label string, err error) {
	s.KOCount++
	s.KODetails = append(s.KODetails, fmt.Sprintf("(%d) name=%s, error=%v", index, label, err))
}
