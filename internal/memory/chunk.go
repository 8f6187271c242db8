package memory

// Chunk splits text into fixed-size chunks with overlap using a sliding
// window over characters (runes, so multi-byte text never splits inside a
// code point). Chunk i covers [i*(size-overlap), i*(size-overlap)+size); the
// last chunk is truncated to the remaining length and a trailing short chunk
// is kept as-is, never deduplicated. For text of length L the walk yields
// ceil(L / (size-overlap)) chunks.
//
// Chunk is a pure function: same input, same output, no state.
func Chunk(text string, size, overlap int) []string {
	if text == "" || size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	runes := []rune(text)
	stride := size - overlap

	var chunks []string
	for i := 0; i < len(runes); i += stride {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
