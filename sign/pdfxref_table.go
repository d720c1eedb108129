package sign

import (
	"fmt"
)

// writeIncrXrefTable appends the classic (non-stream) incremental
// cross-reference table covering every object touched by this update: one
// single-entry subsection per modified object, followed by one subsection
// for the run of newly appended objects.
func (context *SignContext) writeIncrXrefTable() error {
	if _, err := context.OutputBuffer.Write([]byte("xref\n")); err != nil {
		return fmt.Errorf("failed to write incremental xref header: %w", err)
	}

	// Each modified object gets its own one-entry subsection since modified
	// ids are rarely contiguous with one another.
	for _, entry := range context.updatedXrefEntries {
		if _, err := fmt.Fprintf(context.OutputBuffer, "%d 1\n", entry.ID); err != nil {
			return fmt.Errorf("failed to write updated xref subsection header: %w", err)
		}
		if err := writeXrefTableEntry(context, entry.Offset); err != nil {
			return fmt.Errorf("failed to write updated incremental xref entry: %w", err)
		}
	}

	// Newly appended objects are allocated consecutive ids, so they share a
	// single subsection starting right after the last known id.
	if _, err := fmt.Fprintf(context.OutputBuffer, "%d %d\n", context.lastXrefID+1, len(context.newXrefEntries)); err != nil {
		return fmt.Errorf("failed to write new-object xref subsection header: %w", err)
	}
	for _, entry := range context.newXrefEntries {
		if err := writeXrefTableEntry(context, entry.Offset); err != nil {
			return fmt.Errorf("failed to write incremental xref entry: %w", err)
		}
	}

	return nil
}

// writeXrefTableEntry writes a single "in-use" xref table line at generation
// zero - every object this package ever writes is new, so no other
// generation number is possible.
func writeXrefTableEntry(context *SignContext, offset int64) error {
	_, err := fmt.Fprintf(context.OutputBuffer, "%010d 00000 n\r\n", offset)
	return err
}
