package translate

// Split divides items into consecutive chunks of chunkSize, preserving
// order. Every chunk has chunkSize items except possibly the last; empty
// input yields no chunks. chunkSize must be positive.
func Split[T any](items []T, chunkSize int) [][]T {
	if chunkSize <= 0 {
		panic("translate: chunk size must be positive")
	}
	var chunks [][]T
	for i := 0; i < len(items); i += chunkSize {
		end := i + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end:end])
	}
	return chunks
}

// BatchCount returns the number of chunks Split produces for n items.
func BatchCount(n, chunkSize int) int {
	if n == 0 {
		return 0
	}
	return (n + chunkSize - 1) / chunkSize
}
