package models

import "time"

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OsmObject identifies the OpenStreetMap element an observation concerns.
type OsmObject struct {
	Type    OsmObjectType `json:"type"`
	ID      string        `json:"id"`
	Version *int          `json:"version,omitempty"`
}

// NoteContent is the plaintext sealed into NoteRecord.EncryptedContent.
type NoteContent struct {
	OsmObject OsmObject `json:"osm_object"`
	Location  Location  `json:"location"`
	Title     string    `json:"title"`
}

// ProcessingMeta records the provenance of an AI-derived fragment.
type ProcessingMeta struct {
	APIModel         *string    `json:"api_model,omitempty"`
	ProcessingTime   *time.Time `json:"processing_time,omitempty"`
	OriginalFilename *string    `json:"original_filename,omitempty"`
}

// DataContent is the plaintext sealed into DataRecord.EncryptedContent.
type DataContent struct {
	Content        string          `json:"content"`
	Confidence     *float64        `json:"confidence,omitempty"`
	ProcessingMeta *ProcessingMeta `json:"processing_meta,omitempty"`
}

// Clone returns a deep copy of o.
func (o OsmObject) Clone() OsmObject {
	o.Version = clonePtr(o.Version)
	return o
}

// Clone returns a deep copy of c.
func (c NoteContent) Clone() NoteContent {
	c.OsmObject = c.OsmObject.Clone()
	return c
}

// Clone returns a deep copy of m. A nil receiver yields nil.
func (m *ProcessingMeta) Clone() *ProcessingMeta {
	if m == nil {
		return nil
	}
	return &ProcessingMeta{
		APIModel:         clonePtr(m.APIModel),
		ProcessingTime:   clonePtr(m.ProcessingTime),
		OriginalFilename: clonePtr(m.OriginalFilename),
	}
}

// Clone returns a deep copy of c.
func (c DataContent) Clone() DataContent {
	c.Confidence = clonePtr(c.Confidence)
	c.ProcessingMeta = c.ProcessingMeta.Clone()
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
