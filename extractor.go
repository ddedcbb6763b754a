package pagesnap

// Extraction holds the extraction-relevant fields of an article result.
// Nil fields mean the document legitimately has no value for them; that is
// an absence, not an error.
type Extraction struct {
	Title         *string
	Byline        *string
	Excerpt       *string
	SiteName      *string
	Lang          *string
	Dir           *string
	Content       *string // outer markup of the best-matched content block
	TextContent   *string
	Length        *int // character count of TextContent
	PublishedTime *string
	Meta          map[string]string // og_/twitter_ social metadata, nil when none
}

// Extractor converts a raw HTML document into structured article fields.
// Implementations are read-only over the input; each field uses an ordered
// fallback chain where the first rule yielding a non-empty value wins.
type Extractor interface {
	Extract(html string) (*Extraction, error)
}
