package models

import "slices"

// NoteStatus is the workflow position of a note.
type NoteStatus string

const (
	// NoteStatusDraft is the initial status: the user is still capturing input.
	NoteStatusDraft NoteStatus = "draft"
	// NoteStatusProcessed means AI analysis of the captured data has completed.
	NoteStatusProcessed NoteStatus = "processed"
	// NoteStatusCommitted means the note was submitted to OpenStreetMap. Terminal.
	NoteStatusCommitted NoteStatus = "committed"
)

// DataSourceType tells where a data fragment came from.
type DataSourceType string

const (
	DataSourceText  DataSourceType = "text"  // typed by the user
	DataSourceAudio DataSourceType = "audio" // transcribed recording
	DataSourceImage DataSourceType = "image" // OCR extraction
	DataSourceMeta  DataSourceType = "meta"  // AI generated analysis
)

// OsmObjectType is the kind of OpenStreetMap element a note refers to.
type OsmObjectType string

const (
	OsmNode     OsmObjectType = "node"
	OsmWay      OsmObjectType = "way"
	OsmRelation OsmObjectType = "relation"
)

// The closed value sets. Schemas and type guards both read these tables.
var (
	NoteStatuses    = []NoteStatus{NoteStatusDraft, NoteStatusProcessed, NoteStatusCommitted}
	DataSourceTypes = []DataSourceType{DataSourceText, DataSourceAudio, DataSourceImage, DataSourceMeta}
	OsmObjectTypes  = []OsmObjectType{OsmNode, OsmWay, OsmRelation}
)

// IsNoteStatus reports whether value is one of NoteStatuses.
func IsNoteStatus(value string) bool {
	return slices.Contains(NoteStatuses, NoteStatus(value))
}

// IsDataSourceType reports whether value is one of DataSourceTypes.
func IsDataSourceType(value string) bool {
	return slices.Contains(DataSourceTypes, DataSourceType(value))
}

// IsOsmObjectType reports whether value is one of OsmObjectTypes.
func IsOsmObjectType(value string) bool {
	return slices.Contains(OsmObjectTypes, OsmObjectType(value))
}
