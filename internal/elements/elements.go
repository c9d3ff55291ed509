// Package elements defines the page-indexed text elements a bundle
// decomposition run operates on. Elements are produced by an upstream
// extraction step and are immutable for the duration of one run.
package elements

import (
	"errors"
	"sort"
)

// ErrEmptyInput is returned when no page elements were supplied;
// there is nothing to decompose.
var ErrEmptyInput = errors.New("no page elements supplied")

// Type categorizes a page element. The set is open: extractors may
// emit types not listed here and they group under TypeOther handling.
type Type string

const (
	TypeTitle         Type = "title"
	TypeHeader        Type = "header"
	TypeNarrativeText Type = "narrative_text"
	TypeListItem      Type = "list_item"
	TypeTable         Type = "table"
	TypeOther         Type = "other"
)

// PageElement is one atomic unit of extracted text or layout information.
type PageElement struct {
	Type       Type   `json:"type"`
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"` // 1-based; <=0 means unknown
}

// PageIndex groups elements by their 1-based page number.
type PageIndex struct {
	Pages      map[int][]PageElement
	TotalPages int
	Count      int
}

// IndexByPage groups elements by page number, preserving the original
// element order within a page. Elements with an unknown page number
// (zero or negative) default to page 1. The total page count is the
// highest page number seen.
func IndexByPage(els []PageElement) (PageIndex, error) {
	if len(els) == 0 {
		return PageIndex{}, ErrEmptyInput
	}
	idx := PageIndex{Pages: make(map[int][]PageElement), Count: len(els)}
	for _, el := range els {
		page := el.PageNumber
		if page <= 0 {
			page = 1
		}
		idx.Pages[page] = append(idx.Pages[page], el)
		if page > idx.TotalPages {
			idx.TotalPages = page
		}
	}
	return idx, nil
}

// PageNumbers returns the populated page numbers in ascending order.
func (idx PageIndex) PageNumbers() []int {
	nums := make([]int, 0, len(idx.Pages))
	for p := range idx.Pages {
		nums = append(nums, p)
	}
	sort.Ints(nums)
	return nums
}
