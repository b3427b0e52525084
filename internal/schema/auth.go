package schema

import (
	"github.com/dmitrijs2005/osmnotes/internal/models"
)

var accessMethod = literal(models.AccessMethodUser)

// SignupParams validates a signup payload. encrypted_openai_key may be
// omitted or null; when given it must be a non-empty byte sequence.
var SignupParams = newSchema("SignupParams", func(p path, raw any) (models.SignupParams, *ValidationError) {
	o := newObject(p, raw)
	s := models.SignupParams{
		Namespace:    required(o, "NS", anyString),
		Database:     required(o, "DB", anyString),
		AccessMethod: required(o, "AC", accessMethod),
		OsmID:        required(o, "osm_id", nonEmptyString),
		Password:     required(o, "password", byteSequence),
	}
	if key := optionalNullable(o, "encrypted_openai_key", byteSequence); key != nil {
		s.EncryptedOpenAIKey = *key
	}
	return s, o.err
})

// SigninParams validates a signin payload.
var SigninParams = newSchema("SigninParams", func(p path, raw any) (models.SigninParams, *ValidationError) {
	o := newObject(p, raw)
	s := models.SigninParams{
		Namespace:    required(o, "NS", anyString),
		Database:     required(o, "DB", anyString),
		AccessMethod: required(o, "AC", accessMethod),
		OsmID:        required(o, "osm_id", nonEmptyString),
		Password:     required(o, "password", byteSequence),
	}
	return s, o.err
})

// AuthToken accepts any non-empty token string.
var AuthToken = newSchema("AuthToken", func(p path, raw any) (models.AuthToken, *ValidationError) {
	s, verr := nonEmptyString.parse(p, raw)
	return models.AuthToken(s), verr
})

// ValidateSignup checks typed signup params. A nil EncryptedOpenAIKey is
// treated as null.
func ValidateSignup(s models.SignupParams) error {
	_, err := SignupParams.Parse(map[string]any{
		"NS": s.Namespace, "DB": s.Database, "AC": s.AccessMethod, "osm_id": s.OsmID,
		"password": []byte(s.Password), "encrypted_openai_key": nullableBytes(s.EncryptedOpenAIKey),
	})
	return err
}

// ValidateSignin checks typed signin params.
func ValidateSignin(s models.SigninParams) error {
	_, err := SigninParams.Parse(map[string]any{
		"NS": s.Namespace, "DB": s.Database, "AC": s.AccessMethod, "osm_id": s.OsmID,
		"password": []byte(s.Password),
	})
	return err
}

func nullableBytes(b models.ByteArray) any {
	if b == nil {
		return nil
	}
	return []byte(b)
}
