package protocol

// Records is a batch of TLV records; container bodies are assembled as
// one. Keeping records as separate blobs until the enclosing header is
// written avoids reparsing.
type Records [][]byte

func (recs Records) TotalLen() (total int64) {
	for _, r := range recs {
		total += int64(len(r))
	}
	return
}
