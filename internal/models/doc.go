// Package models defines the persisted entities of osmnotes (users, notes and
// data fragments), the plaintext payloads that are sealed into them, the
// credential-exchange payloads, and the decrypted views composed on read.
//
// Values in this package carry no validation of their own; every value that
// crosses the encryption or storage boundary goes through package schema.
package models
