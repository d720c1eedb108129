package sign

import (
	"fmt"
	"strings"
)

// xrefEntry records where an object written during this incremental update
// ended up in the output buffer, so the xref table/stream can reference it.
type xrefEntry struct {
	ID     uint32
	Offset int64
}

// getNextObjectID returns the object ID that the next call to AddObject will use,
// seeding lastXrefID from the original document's object count on first use.
func (context *SignContext) getNextObjectID() uint32 {
	if context.lastXrefID == 0 {
		context.lastXrefID = uint32(context.PDFReader.XrefInformation.ItemCount)
	}
	return context.lastXrefID + 1
}

// AddObject appends a new indirect object to the output buffer and records its
// offset for the xref table/stream. object is the raw dictionary/stream body,
// without the surrounding "N 0 obj"/"endobj" wrapper.
func (context *SignContext) AddObject(object []byte) (uint32, error) {
	id := context.getNextObjectID()

	offset := int64(context.OutputBuffer.Buff.Len())
	if _, err := context.OutputBuffer.Write([]byte(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", id, strings.TrimSpace(string(object))))); err != nil {
		return 0, err
	}

	context.newXrefEntries = append(context.newXrefEntries, xrefEntry{ID: id, Offset: offset})
	context.lastXrefID = id

	return id, nil
}

func (context *SignContext) addObject(object []byte) (uint32, error) {
	return context.AddObject(object)
}

// UpdateObject appends a new revision of an existing object (identified by id)
// to the output buffer and records it among the updated xref entries.
func (context *SignContext) UpdateObject(id uint32, object []byte) error {
	offset := int64(context.OutputBuffer.Buff.Len())
	if _, err := context.OutputBuffer.Write([]byte(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", id, strings.TrimSpace(string(object))))); err != nil {
		return err
	}

	context.updatedXrefEntries = append(context.updatedXrefEntries, xrefEntry{ID: id, Offset: offset})

	if id > context.lastXrefID {
		context.lastXrefID = id
	}

	return nil
}

func (context *SignContext) updateObject(id uint32, object []byte) error {
	return context.UpdateObject(id, object)
}
