// Package schema validates everything that crosses the encryption boundary.
//
// Plaintext payloads (NoteContent, DataContent) are validated before they are
// sealed and again after they are opened; persisted envelopes (UserRecord,
// NoteRecord, DataRecord) are validated before they are written and after
// they are read; credential-exchange payloads (SignupParams, SigninParams)
// are validated before anything is derived or stored from them.
//
// Input is "raw": the value tree produced by decoding JSON into any
// (map[string]any, []any, float64, string, bool, nil), optionally holding
// native values from database rows (time.Time, []byte, integers). Each Schema
// has a single entry point that either returns the typed value or a
// *ValidationError naming the offending field and the violated constraint:
//
//	content, err := schema.NoteContent.Parse(raw)
//	if err != nil {
//	    var verr *schema.ValidationError
//	    errors.As(err, &verr) // verr.Path == "location.lat"
//	}
//
// Schemas are immutable package-level values and are safe for concurrent use.
package schema
