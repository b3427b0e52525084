package schema

import (
	"encoding/json"

	"github.com/dmitrijs2005/osmnotes/internal/models"
)

var (
	latitude  = floatRange(-90, 90)
	longitude = floatRange(-180, 180)
	// confidence is an inclusive probability.
	confidence = floatRange(0, 1)

	osmObjectType  = enumOf[models.OsmObjectType]("OsmObjectType", tagOsmObjectType)
	noteStatus     = enumOf[models.NoteStatus]("NoteStatus", tagNoteStatus)
	dataSourceType = enumOf[models.DataSourceType]("DataSourceType", tagDataSourceType)
)

// Location accepts {lat, lng} with lat in [-90, 90] and lng in [-180, 180].
var Location = newSchema("Location", func(p path, raw any) (models.Location, *ValidationError) {
	o := newObject(p, raw)
	loc := models.Location{
		Lat: required(o, "lat", latitude),
		Lng: required(o, "lng", longitude),
	}
	return loc, o.err
})

// OsmObject accepts {type, id, version?}.
var OsmObject = newSchema("OsmObject", func(p path, raw any) (models.OsmObject, *ValidationError) {
	o := newObject(p, raw)
	obj := models.OsmObject{
		Type:    required(o, "type", osmObjectType),
		ID:      required(o, "id", nonEmptyString),
		Version: optional(o, "version", positiveInt),
	}
	return obj, o.err
})

// ProcessingMeta accepts {api_model?, processing_time?, original_filename?}.
// Each field may be omitted but none may be null.
var ProcessingMeta = newSchema("ProcessingMeta", func(p path, raw any) (models.ProcessingMeta, *ValidationError) {
	o := newObject(p, raw)
	meta := models.ProcessingMeta{
		APIModel:         optional(o, "api_model", anyString),
		ProcessingTime:   optional(o, "processing_time", instant),
		OriginalFilename: optional(o, "original_filename", anyString),
	}
	return meta, o.err
})

// NoteContent is the plaintext of a note.
var NoteContent = newSchema("NoteContent", func(p path, raw any) (models.NoteContent, *ValidationError) {
	o := newObject(p, raw)
	c := models.NoteContent{
		OsmObject: required(o, "osm_object", OsmObject),
		Location:  required(o, "location", Location),
		Title:     required(o, "title", nonEmptyString),
	}
	return c, o.err
})

// DataContent is the plaintext of a data fragment. Content may be empty.
var DataContent = newSchema("DataContent", func(p path, raw any) (models.DataContent, *ValidationError) {
	o := newObject(p, raw)
	c := models.DataContent{
		Content:        required(o, "content", anyString),
		Confidence:     optional(o, "confidence", confidence),
		ProcessingMeta: optional(o, "processing_meta", ProcessingMeta),
	}
	return c, o.err
})

// ParseNoteContent validates a decoded note payload.
func ParseNoteContent(raw any) (models.NoteContent, error) { return NoteContent.Parse(raw) }

// ParseDataContent validates a decoded data payload.
func ParseDataContent(raw any) (models.DataContent, error) { return DataContent.Parse(raw) }

// EncodeNoteContent validates c and returns the JSON plaintext to be sealed.
// The bytes returned are exactly the bytes that were validated.
func EncodeNoteContent(c models.NoteContent) ([]byte, error) {
	return encode(NoteContent, c)
}

// EncodeDataContent validates c and returns the JSON plaintext to be sealed.
func EncodeDataContent(c models.DataContent) ([]byte, error) {
	return encode(DataContent, c)
}

func encode[T any](s Schema[T], v T) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fail("", ConstraintEncoding, "cannot encode %s: %v", s.name, err)
	}
	if _, err := s.ParseJSON(b); err != nil {
		return nil, err
	}
	return b, nil
}
