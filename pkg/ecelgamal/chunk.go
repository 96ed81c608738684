package ecelgamal

// Split cuts msg into consecutive chunks of n bytes; the last one may be
// shorter. An empty message yields no chunks. The chunks alias msg.
func Split(msg []byte, n int) [][]byte {
	if n < 1 {
		panic("ecelgamal: chunk length must be positive")
	}
	chunks := make([][]byte, 0, (len(msg)+n-1)/n)
	for len(msg) > n {
		chunks = append(chunks, msg[:n:n])
		msg = msg[n:]
	}
	if len(msg) > 0 {
		chunks = append(chunks, msg)
	}
	return chunks
}

// Join concatenates chunks in order.
func Join(chunks [][]byte) []byte {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
