package index

import (
	"fmt"
	"strings"
)

// SplitPages slices the per-page text of a document into overlapping word
// windows of chunkSize words, advancing chunkSize-overlap words per step.
// Every chunk is tagged with its 1-based source page; the two returned slices
// are index-aligned. A non-empty page shorter than chunkSize still yields one
// chunk, empty windows are skipped.
func SplitPages(pages []string, chunkSize, overlap int) ([]string, []int, error) {
	if chunkSize <= 0 || overlap <= 0 || overlap >= chunkSize {
		return nil, nil, fmt.Errorf("invalid chunking params: size=%d overlap=%d", chunkSize, overlap)
	}

	var chunks []string
	var chunkPages []int

	step := chunkSize - overlap
	for pageNum, text := range pages {
		words := strings.Fields(text)
		for i := 0; i < len(words); i += step {
			end := i + chunkSize
			if end > len(words) {
				end = len(words)
			}

			content := strings.Join(words[i:end], " ")
			if content == "" {
				continue
			}

			chunks = append(chunks, content)
			chunkPages = append(chunkPages, pageNum+1)
		}
	}

	return chunks, chunkPages, nil
}
