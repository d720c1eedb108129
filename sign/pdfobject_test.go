package sign

import (
	"bytes"
	"testing"

	"github.com/mattetti/filebuffer"
)

func TestAddObject(t *testing.T) {
	context := &SignContext{
		OutputBuffer: &filebuffer.Buffer{
			Buff: new(bytes.Buffer),
		},
		lastXrefID: 10,
	}

	id, err := context.addObject([]byte("test object"))
	if err != nil {
		t.Fatalf("addObject failed: %v", err)
	}

	if id != 11 {
		t.Errorf("expected object ID 11, got %d", id)
	}

	expected := "11 0 obj\ntest object\nendobj\n"
	if context.OutputBuffer.Buff.String() != expected {
		t.Errorf("unexpected object bytes\ngot:\n%s\nwant:\n%s", context.OutputBuffer.Buff.String(), expected)
	}

	if len(context.newXrefEntries) != 1 || context.newXrefEntries[0].ID != 11 || context.newXrefEntries[0].Offset != 0 {
		t.Errorf("unexpected newXrefEntries: %+v", context.newXrefEntries)
	}

	if context.lastXrefID != 11 {
		t.Errorf("expected lastXrefID 11, got %d", context.lastXrefID)
	}
}

func TestUpdateObject(t *testing.T) {
	context := &SignContext{
		OutputBuffer: &filebuffer.Buffer{
			Buff: new(bytes.Buffer),
		},
		lastXrefID: 10,
	}

	if err := context.updateObject(4, []byte("<< /Type /Page >>")); err != nil {
		t.Fatalf("updateObject failed: %v", err)
	}

	expected := "4 0 obj\n<< /Type /Page >>\nendobj\n"
	if context.OutputBuffer.Buff.String() != expected {
		t.Errorf("unexpected object bytes\ngot:\n%s\nwant:\n%s", context.OutputBuffer.Buff.String(), expected)
	}

	if len(context.updatedXrefEntries) != 1 || context.updatedXrefEntries[0].ID != 4 {
		t.Errorf("unexpected updatedXrefEntries: %+v", context.updatedXrefEntries)
	}

	// Updating an existing lower-numbered object does not move lastXrefID backwards.
	if context.lastXrefID != 10 {
		t.Errorf("expected lastXrefID to remain 10, got %d", context.lastXrefID)
	}
}

func TestGetNextObjectIDSeedsFromXrefInformation(t *testing.T) {
	context := &SignContext{}
	context.PDFReader = nil
	// lastXrefID is zero-valued, getNextObjectID should not panic when PDFReader
	// is nil only if lastXrefID is already seeded; so seed it here explicitly.
	context.lastXrefID = 5

	if got := context.getNextObjectID(); got != 6 {
		t.Errorf("expected next object ID 6, got %d", got)
	}
}
