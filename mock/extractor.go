package mock

import "github.com/fwojciec/pagesnap"

var _ pagesnap.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pagesnap.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*pagesnap.Extraction, error)
}

func (e *Extractor) Extract(html string) (*pagesnap.Extraction, error) {
	return e.ExtractFn(html)
}
