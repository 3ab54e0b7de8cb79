package history

import (
	"io"

	"github.com/gocarina/gocsv"
)

// ExportCSV writes the full history, newest first, as CSV. Metric columns
// absent for a result's game type come out empty, not zero.
func (s *Store) ExportCSV(w io.Writer) error {
	rs := s.All()
	return gocsv.Marshal(&rs, w)
}
