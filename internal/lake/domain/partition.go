package domain

import (
	"fmt"
	"path"
	"time"
)

// Partition identifies the hierarchical storage location of one raw
// document: API name, calendar date of the business timestamp, store.
type Partition struct {
	API          string
	BusinessDate time.Time
	StoreID      string
}

// Segments returns the path segments in hierarchy order. The literal
// layout (ano/mes/dia, storeId prefix) is load bearing for downstream
// partition discovery and must not change.
func (p Partition) Segments() []string {
	year, month, day := p.BusinessDate.Date()
	return []string{
		p.API,
		fmt.Sprintf("ano=%04d", year),
		fmt.Sprintf("mes=%02d", int(month)),
		fmt.Sprintf("dia=%02d", day),
		fmt.Sprintf("storeId=%s", p.StoreID),
	}
}

// Path joins the segments with forward slashes, usable both as an object
// key prefix and, via filepath.FromSlash, as a directory path.
func (p Partition) Path() string {
	return path.Join(p.Segments()...)
}
