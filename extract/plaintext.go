package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PlainTextExtractor reads page text through the PDF text-object layer.
// It is the primary method: accurate when the PDF carries proper font
// encodings, but it returns nothing for pages it cannot decode.
type PlainTextExtractor struct{}

func (te *PlainTextExtractor) ExtractPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// per-page decode failures leave an empty page for the
			// secondary method to fill in
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
