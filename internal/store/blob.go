package store

import (
	"encoding/binary"
	"math"
)

// embeddingToBlob serializes a float32 slice into a binary blob
// (little-endian, 4 bytes per component).
func embeddingToBlob(emb []float32) []byte {
	buf := make([]byte, len(emb)*4)
	for i, v := range emb {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// blobToEmbedding deserializes a binary blob back to a float32 slice.
func blobToEmbedding(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	n := len(blob) / 4
	emb := make([]float32, n)
	for i := range emb {
		emb[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return emb
}
